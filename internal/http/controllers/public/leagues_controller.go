// Package public contiene los controllers sin autenticación: lo que ve
// cualquier visitante del sitio de la liga.
package public

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/sideline/internal/http"
	"github.com/dropDatabas3/sideline/internal/http/dto"
	leaguessvc "github.com/dropDatabas3/sideline/internal/http/services/leagues"
	"github.com/dropDatabas3/sideline/internal/observability/logger"
	"github.com/dropDatabas3/sideline/internal/store/core"
)

// LeaguesController expone la vista pública de ligas: solo activas,
// solo lectura.
type LeaguesController struct {
	service *leaguessvc.Service
}

func NewLeaguesController(service *leaguessvc.Service) *LeaguesController {
	return &LeaguesController{service: service}
}

func (c *LeaguesController) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrNotFound) {
		httpx.WriteError(w, httpx.ErrNotFound)
		return
	}
	logger.From(r.Context()).Error("public leagues failure", logger.Err(err))
	httpx.WriteError(w, httpx.ErrInternal.WithCause(err))
}

// List maneja GET /api/leagues (solo activas, cacheado)
func (c *LeaguesController) List(w http.ResponseWriter, r *http.Request) {
	ls, err := c.service.ListActive(r.Context())
	if err != nil {
		c.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.FromLeagues(ls))
}

// Get maneja GET /api/leagues/{leagueID}. Las ligas desactivadas no existen
// para la vista pública.
func (c *LeaguesController) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leagueID")

	l, err := c.service.Get(r.Context(), id)
	if err != nil {
		c.writeErr(w, r, err)
		return
	}
	if !l.Active {
		httpx.WriteError(w, httpx.ErrNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.FromLeague(l))
}

// Stats maneja GET /api/leagues/{leagueID}/stats
func (c *LeaguesController) Stats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leagueID")

	l, err := c.service.Get(r.Context(), id)
	if err != nil {
		c.writeErr(w, r, err)
		return
	}
	if !l.Active {
		httpx.WriteError(w, httpx.ErrNotFound)
		return
	}
	counts, err := c.service.Stats(r.Context(), id)
	if err != nil {
		c.writeErr(w, r, err)
		return
	}

	resp := dto.LeagueStatsResponse{
		LeagueID:          id,
		RegisteredPlayers: counts.RegisteredPlayers,
		RegisteredTeams:   counts.RegisteredTeams,
		MaxTeams:          l.MaxTeams,
	}
	if l.MaxTeams != nil {
		rem := *l.MaxTeams - counts.RegisteredTeams
		if rem < 0 {
			rem = 0
		}
		resp.SpotsRemaining = &rem
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// Schedule maneja GET /api/leagues/{leagueID}/schedule.
// El generador de fixtures todavía no está conectado: devuelve el shape
// definitivo con la lista vacía para que el frontend pueda integrarse ya.
func (c *LeaguesController) Schedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leagueID")

	l, err := c.service.Get(r.Context(), id)
	if err != nil {
		c.writeErr(w, r, err)
		return
	}
	if !l.Active {
		httpx.WriteError(w, httpx.ErrNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.ScheduleResponse{LeagueID: id, Games: []any{}})
}

// Standings maneja GET /api/leagues/{leagueID}/standings.
// Mismo estado que Schedule: shape definitivo, datos pendientes.
func (c *LeaguesController) Standings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leagueID")

	l, err := c.service.Get(r.Context(), id)
	if err != nil {
		c.writeErr(w, r, err)
		return
	}
	if !l.Active {
		httpx.WriteError(w, httpx.ErrNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.StandingsResponse{LeagueID: id, Standings: []any{}})
}
