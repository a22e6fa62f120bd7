// Package admin contiene los controllers administrativos. Todas las rutas
// que los usan corren detrás de RequireAdmin.
package admin

import (
	"context"
	"errors"
	"net/http"

	httpx "github.com/dropDatabas3/sideline/internal/http"
	mw "github.com/dropDatabas3/sideline/internal/http/middlewares"
	leaguessvc "github.com/dropDatabas3/sideline/internal/http/services/leagues"
	"github.com/dropDatabas3/sideline/internal/league"
	"github.com/dropDatabas3/sideline/internal/observability/logger"
	"github.com/dropDatabas3/sideline/internal/store/core"
)

// Controllers agrupa los controllers del dominio admin.
type Controllers struct {
	Leagues *LeaguesController
	Admins  *AdminsController
}

// NewControllers crea el agregador de controllers admin.
func NewControllers(leagues *leaguessvc.Service, admins core.AdminRepository) *Controllers {
	return &Controllers{
		Leagues: NewLeaguesController(leagues),
		Admins:  NewAdminsController(admins),
	}
}

// validationErrs son los errores de dominio que mapean a 400. Cada uno llega
// al cliente con su propio mensaje, no se colapsan en un genérico. El guard
// de borrado también vive acá: una liga con inscriptos no se puede desactivar
// y eso es un 400, no un conflicto de estado.
var validationErrs = []error{
	core.ErrInvalid,
	league.ErrUnknownFormat,
	league.ErrMissingSwissRounds,
	league.ErrMissingPlayoffs,
	league.ErrWeekSumMismatch,
	league.ErrMissingCompass,
	league.ErrBadNumWeeks,
	leaguessvc.ErrBadPlayFormat,
	leaguessvc.ErrHasRegistrations,
}

// actorEmail devuelve el email del admin autenticado, para los eventos de
// auditoría. En rutas admin el principal siempre está; el "" es solo para no
// panickear si alguien monta el controller sin el middleware.
func actorEmail(ctx context.Context) string {
	if p := mw.GetPrincipal(ctx); p != nil {
		return p.Email
	}
	return ""
}

// writeDomainError traduce errores de service/store a respuestas HTTP.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrNotFound) {
		httpx.WriteError(w, httpx.ErrNotFound)
		return
	}
	for _, ve := range validationErrs {
		if errors.Is(err, ve) {
			httpx.WriteError(w, &httpx.AppError{
				Code:       "VALIDATION_ERROR",
				Message:    err.Error(),
				HTTPStatus: http.StatusBadRequest,
			})
			return
		}
	}
	logger.From(r.Context()).Error("unhandled domain error", logger.Err(err))
	httpx.WriteError(w, httpx.ErrInternal.WithCause(err))
}
