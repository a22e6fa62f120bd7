// Package cache provee un cache chico de bytes con TTL, multi-backend.
//
// Soporta:
//   - Memory (in-process, para desarrollo/testing)
//   - Redis (distribuido, para producción)
//
// Se usa para respuestas públicas baratas de recalcular pero frecuentes
// (listado de ligas activas). El cache del JWKS NO pasa por acá: ese tiene
// su propia política (serve-stale-on-error) en internal/authn.
package cache

import "time"

// Cache define las operaciones mínimas.
type Cache interface {
	Get(key string) (value []byte, ok bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}
