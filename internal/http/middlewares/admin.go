package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/sideline/internal/authn"
	httpx "github.com/dropDatabas3/sideline/internal/http"
	"github.com/dropDatabas3/sideline/internal/observability/logger"
)

// bearerToken extrae el token del header Authorization. Devuelve "" si el
// header falta o no tiene el esquema Bearer.
func bearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[len("Bearer "):])
}

// RequireAdmin valida Authorization: Bearer <JWT> contra el gate y guarda el
// Principal en el contexto. Respuestas:
//
//   - header ausente/malformado, token inválido, identidad sin email → 401
//     con el MISMO mensaje en todos los casos
//   - identidad válida sin grant activo → 403 "Admin access required"
//
// El 403 es deliberadamente distinguible: le dice a un usuario legítimo que
// su problema es de permisos, no de sesión.
func RequireAdmin(gate *authn.Gate) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				httpx.WriteError(w, httpx.ErrUnauthenticated)
				return
			}

			p, err := gate.AuthorizeAdmin(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, authn.ErrNotAuthorized):
					httpx.WriteError(w, httpx.ErrAdminRequired)
				case errors.Is(err, authn.ErrUnauthenticated), errors.Is(err, authn.ErrNoEmail):
					w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
					httpx.WriteError(w, httpx.ErrUnauthenticated)
				default:
					// trust store caído u otro fallo de infraestructura
					logger.From(r.Context()).Error("admin gate failure", logger.Err(err))
					httpx.WriteError(w, httpx.ErrInternal)
				}
				return
			}

			ctx := setPrincipal(r.Context(), p)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.Email(p.Email)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
