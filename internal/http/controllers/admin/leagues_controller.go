package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/sideline/internal/audit"
	httpx "github.com/dropDatabas3/sideline/internal/http"
	"github.com/dropDatabas3/sideline/internal/http/dto"
	mw "github.com/dropDatabas3/sideline/internal/http/middlewares"
	leaguessvc "github.com/dropDatabas3/sideline/internal/http/services/leagues"
	"github.com/dropDatabas3/sideline/internal/league"
	"github.com/dropDatabas3/sideline/internal/observability/logger"
)

// LeaguesController maneja el CRUD admin de ligas.
type LeaguesController struct {
	service *leaguessvc.Service
}

func NewLeaguesController(service *leaguessvc.Service) *LeaguesController {
	return &LeaguesController{service: service}
}

// Create maneja POST /api/admin/leagues
func (c *LeaguesController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.CreateLeagueRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}

	createdBy := ""
	if p := mw.GetPrincipal(ctx); p != nil {
		createdBy = p.Email
	}

	l, err := c.service.Create(ctx, createdBy, leaguessvc.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate.Time,
		NumWeeks:    req.NumWeeks,
		PlayFormat:  req.PlayFormat,

		TournamentFormat:   league.Format(req.TournamentFormat),
		RegularSeasonWeeks: req.RegularSeasonWeeks,
		PlayoffWeeks:       req.PlayoffWeeks,
		SwissRounds:        req.SwissRounds,
		SwissPairingMethod: req.SwissPairingMethod,
		CompassDrawRounds:  req.CompassDrawRounds,
		PlayoffTeams:       req.PlayoffTeams,
		PlayoffFormat:      req.PlayoffFormat,

		GameDuration: req.GameDuration,
		GamesPerWeek: req.GamesPerWeek,
		MaxTeams:     req.MaxTeams,
		MinTeams:     req.MinTeams,

		RegistrationDeadline: req.RegistrationDeadline,
		RegistrationFee:      req.RegistrationFee,
		Settings:             req.Settings,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	audit.Event(ctx, createdBy, "league.create",
		logger.LeagueID(l.ID), logger.String("name", l.Name))
	httpx.WriteJSON(w, http.StatusCreated, dto.FromLeague(l))
}

// List maneja GET /api/admin/leagues (todas, incluidas inactivas)
func (c *LeaguesController) List(w http.ResponseWriter, r *http.Request) {
	ls, err := c.service.ListAll(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.FromLeagues(ls))
}

// Get maneja GET /api/admin/leagues/{leagueID}
func (c *LeaguesController) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leagueID")

	l, err := c.service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.FromLeague(l))
}

// Update maneja PATCH /api/admin/leagues/{leagueID}
func (c *LeaguesController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "leagueID")

	var req dto.UpdateLeagueRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}

	in := leaguessvc.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		NumWeeks:    req.NumWeeks,
		PlayFormat:  req.PlayFormat,

		RegularSeasonWeeks: req.RegularSeasonWeeks,
		PlayoffWeeks:       req.PlayoffWeeks,
		SwissRounds:        req.SwissRounds,
		SwissPairingMethod: req.SwissPairingMethod,
		CompassDrawRounds:  req.CompassDrawRounds,
		PlayoffTeams:       req.PlayoffTeams,
		PlayoffFormat:      req.PlayoffFormat,

		GameDuration: req.GameDuration,
		GamesPerWeek: req.GamesPerWeek,
		MaxTeams:     req.MaxTeams,
		MinTeams:     req.MinTeams,

		RegistrationDeadline: req.RegistrationDeadline,
		RegistrationFee:      req.RegistrationFee,
		Settings:             req.Settings,
	}
	if req.StartDate != nil {
		in.StartDate = &req.StartDate.Time
	}
	if req.TournamentFormat != nil {
		f := league.Format(*req.TournamentFormat)
		in.TournamentFormat = &f
	}

	l, err := c.service.Update(ctx, id, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	audit.Event(ctx, actorEmail(ctx), "league.update", logger.LeagueID(l.ID))
	httpx.WriteJSON(w, http.StatusOK, dto.FromLeague(l))
}

// Delete maneja DELETE /api/admin/leagues/{leagueID} (soft delete)
func (c *LeaguesController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "leagueID")

	if err := c.service.Delete(ctx, id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	audit.Event(ctx, actorEmail(ctx), "league.deactivate", logger.LeagueID(id))
	w.WriteHeader(http.StatusNoContent)
}

// Stats maneja GET /api/admin/leagues/{leagueID}/stats
func (c *LeaguesController) Stats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leagueID")

	l, err := c.service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	counts, err := c.service.Stats(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
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
