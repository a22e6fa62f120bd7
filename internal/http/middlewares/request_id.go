package middlewares

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// maxClientRequestID acota lo que aceptamos del cliente: un header gigante no
// tiene por qué terminar en cada línea de log.
const maxClientRequestID = 64

// WithRequestID propaga el X-Request-ID del cliente (truncado si se pasa) o
// genera un UUID nuevo. El ID viaja en el response header y en el contexto,
// de donde lo levantan logs y auditoría.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
			if len(rid) > maxClientRequestID {
				rid = rid[:maxClientRequestID]
			}
			if rid == "" {
				rid = uuid.NewString()
			}

			w.Header().Set("X-Request-ID", rid)
			ctx := setRequestID(r.Context(), rid)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
