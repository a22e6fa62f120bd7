// Package audit registra las mutaciones administrativas (quién hizo qué y a
// qué recurso) en un logger propio, separable del log de aplicación por el
// nombre "audit". Hoy el sink es zap; si algún día hace falta persistirlo en
// la base, esta es la única función a tocar.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/sideline/internal/observability/logger"
)

// Event emite un evento de auditoría. actor es el email del admin que ejecuta
// la acción (viene del token ya verificado). El logger del contexto ya trae
// request_id y email, acá solo sumamos la acción y sus campos.
func Event(ctx context.Context, actor, action string, fields ...zap.Field) {
	base := []zap.Field{
		zap.String("actor", actor),
		zap.String("action", action),
	}
	logger.From(ctx).Named("audit").Info("audit event", append(base, fields...)...)
}
