// Package middlewares contiene los decoradores HTTP del servicio. El orden
// de la cadena lo arma el router (chi.Use); acá solo viven las piezas.
package middlewares

import "net/http"

// Middleware decora un http.Handler. Compatible con chi.Use por forma.
type Middleware func(http.Handler) http.Handler
