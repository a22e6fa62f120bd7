// Package dto define los shapes JSON del API. Los nombres de campo son
// snake_case y las fechas de calendario (start_date, end_date) van como
// YYYY-MM-DD, sin hora.
package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/sideline/internal/store/core"
)

// Date es una fecha de calendario. Serializa como "2006-01-02" y acepta
// también RFC3339 en el input (clientes que mandan timestamps completos).
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	// se trunca a la fecha: la hora no es parte del modelo
	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

// ---------- LIGAS ----------

// CreateLeagueRequest es el body de POST /api/admin/leagues.
type CreateLeagueRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	StartDate   Date    `json:"start_date"`
	NumWeeks    int     `json:"num_weeks"`
	PlayFormat  string  `json:"play_format"`

	TournamentFormat   string  `json:"tournament_format"`
	RegularSeasonWeeks *int    `json:"regular_season_weeks"`
	PlayoffWeeks       *int    `json:"playoff_weeks"`
	SwissRounds        *int    `json:"swiss_rounds"`
	SwissPairingMethod *string `json:"swiss_pairing_method"`
	CompassDrawRounds  *int    `json:"compass_draw_rounds"`
	PlayoffTeams       *int    `json:"playoff_teams"`
	PlayoffFormat      *string `json:"playoff_format"`

	GameDuration int  `json:"game_duration"`
	GamesPerWeek int  `json:"games_per_week"`
	MaxTeams     *int `json:"max_teams"`
	MinTeams     int  `json:"min_teams"`

	RegistrationDeadline *time.Time     `json:"registration_deadline"`
	RegistrationFee      *int           `json:"registration_fee"`
	Settings             map[string]any `json:"settings"`
}

// UpdateLeagueRequest es el body de PATCH /api/admin/leagues/{id}.
// Todos los campos son opcionales; solo los presentes se aplican.
type UpdateLeagueRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	StartDate   *Date   `json:"start_date"`
	NumWeeks    *int    `json:"num_weeks"`
	PlayFormat  *string `json:"play_format"`

	TournamentFormat   *string `json:"tournament_format"`
	RegularSeasonWeeks *int    `json:"regular_season_weeks"`
	PlayoffWeeks       *int    `json:"playoff_weeks"`
	SwissRounds        *int    `json:"swiss_rounds"`
	SwissPairingMethod *string `json:"swiss_pairing_method"`
	CompassDrawRounds  *int    `json:"compass_draw_rounds"`
	PlayoffTeams       *int    `json:"playoff_teams"`
	PlayoffFormat      *string `json:"playoff_format"`

	GameDuration *int `json:"game_duration"`
	GamesPerWeek *int `json:"games_per_week"`
	MaxTeams     *int `json:"max_teams"`
	MinTeams     *int `json:"min_teams"`

	RegistrationDeadline *time.Time     `json:"registration_deadline"`
	RegistrationFee      *int           `json:"registration_fee"`
	Settings             map[string]any `json:"settings"`
}

// LeagueResponse es la vista JSON de una liga.
type LeagueResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	StartDate   Date    `json:"start_date"`
	EndDate     Date    `json:"end_date"`
	NumWeeks    int     `json:"num_weeks"`
	PlayFormat  string  `json:"play_format"`

	TournamentFormat   string  `json:"tournament_format"`
	RegularSeasonWeeks *int    `json:"regular_season_weeks,omitempty"`
	PlayoffWeeks       *int    `json:"playoff_weeks,omitempty"`
	SwissRounds        *int    `json:"swiss_rounds,omitempty"`
	SwissPairingMethod *string `json:"swiss_pairing_method,omitempty"`
	CompassDrawRounds  *int    `json:"compass_draw_rounds,omitempty"`
	PlayoffTeams       *int    `json:"playoff_teams,omitempty"`
	PlayoffFormat      *string `json:"playoff_format,omitempty"`

	GameDuration int  `json:"game_duration"`
	GamesPerWeek int  `json:"games_per_week"`
	MaxTeams     *int `json:"max_teams,omitempty"`
	MinTeams     int  `json:"min_teams"`

	RegistrationDeadline *time.Time     `json:"registration_deadline,omitempty"`
	RegistrationFee      *int           `json:"registration_fee,omitempty"`
	Settings             map[string]any `json:"settings,omitempty"`

	CreatedBy string    `json:"created_by,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromLeague arma la respuesta a partir de la entidad.
func FromLeague(l *core.League) LeagueResponse {
	return LeagueResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		StartDate:   Date{l.StartDate},
		EndDate:     Date{l.EndDate},
		NumWeeks:    l.NumWeeks,
		PlayFormat:  l.PlayFormat,

		TournamentFormat:   string(l.TournamentFormat),
		RegularSeasonWeeks: l.RegularSeasonWeeks,
		PlayoffWeeks:       l.PlayoffWeeks,
		SwissRounds:        l.SwissRounds,
		SwissPairingMethod: l.SwissPairingMethod,
		CompassDrawRounds:  l.CompassDrawRounds,
		PlayoffTeams:       l.PlayoffTeams,
		PlayoffFormat:      l.PlayoffFormat,

		GameDuration: l.GameDuration,
		GamesPerWeek: l.GamesPerWeek,
		MaxTeams:     l.MaxTeams,
		MinTeams:     l.MinTeams,

		RegistrationDeadline: l.RegistrationDeadline,
		RegistrationFee:      l.RegistrationFee,
		Settings:             l.Settings,

		CreatedBy: l.CreatedBy,
		IsActive:  l.Active,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

// FromLeagues mapea el slice completo (nunca null en el JSON).
func FromLeagues(ls []core.League) []LeagueResponse {
	out := make([]LeagueResponse, 0, len(ls))
	for i := range ls {
		out = append(out, FromLeague(&ls[i]))
	}
	return out
}

// LeagueStatsResponse son los conteos de inscriptos de una liga.
type LeagueStatsResponse struct {
	LeagueID          string `json:"league_id"`
	RegisteredPlayers int    `json:"registered_players"`
	RegisteredTeams   int    `json:"registered_teams"`
	MaxTeams          *int   `json:"max_teams,omitempty"`
	SpotsRemaining    *int   `json:"spots_remaining,omitempty"`
}

// ScheduleResponse es el calendario de partidos de una liga.
// TODO: poblar cuando el generador de fixtures esté conectado.
type ScheduleResponse struct {
	LeagueID string `json:"league_id"`
	Games    []any  `json:"games"`
}

// StandingsResponse es la tabla de posiciones de una liga.
type StandingsResponse struct {
	LeagueID  string `json:"league_id"`
	Standings []any  `json:"standings"`
}

// ---------- ADMINS ----------

// GrantAdminRequest es el body de POST /api/admin/admins.
type GrantAdminRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"` // vacío = "admin"
}

// SetAdminRoleRequest es el body de PATCH /api/admin/admins/{email}/role.
type SetAdminRoleRequest struct {
	Role string `json:"role"`
}

// AdminGrantResponse es la vista JSON de un grant.
type AdminGrantResponse struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromAdminGrant arma la respuesta a partir del grant.
func FromAdminGrant(g *core.AdminGrant) AdminGrantResponse {
	return AdminGrantResponse{
		Email:     g.Email,
		Role:      string(g.Role),
		IsActive:  g.Active,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// FromAdminGrants mapea el slice completo (nunca null en el JSON).
func FromAdminGrants(gs []core.AdminGrant) []AdminGrantResponse {
	out := make([]AdminGrantResponse, 0, len(gs))
	for i := range gs {
		out = append(out, FromAdminGrant(&gs[i]))
	}
	return out
}
