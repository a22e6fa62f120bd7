package middlewares

import (
	"net/http"
	"runtime/debug"

	httpx "github.com/dropDatabas3/sideline/internal/http"
	"github.com/dropDatabas3/sideline/internal/observability/logger"
)

// WithRecover atrapa panics del handler y responde 500 en vez de tirar la
// conexión. El stack va a los logs, nunca al cliente.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.From(r.Context()).Error("panic recovered",
						logger.String("panic", toString(rec)),
						logger.String("stack", string(debug.Stack())),
						logger.Path(r.URL.Path),
					)
					httpx.WriteError(w, httpx.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "unknown panic"
}
