package middlewares

import (
	"context"

	"github.com/dropDatabas3/sideline/internal/authn"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyPrincipal
)

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, rid)
}

// GetRequestID devuelve el request ID del contexto, o "" si no hay.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

func setPrincipal(ctx context.Context, p *authn.Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// GetPrincipal devuelve el admin autorizado del contexto, o nil si el request
// no pasó por RequireAdmin.
func GetPrincipal(ctx context.Context) *authn.Principal {
	if v, ok := ctx.Value(ctxKeyPrincipal).(*authn.Principal); ok {
		return v
	}
	return nil
}
