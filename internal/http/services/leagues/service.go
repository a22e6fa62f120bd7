// Package leagues contiene el service de ligas: validación de formato,
// derivación de end_date, merge de updates y el guard de borrado. Los
// controllers HTTP quedan finos, solo mapean DTOs.
package leagues

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/sideline/internal/cache"
	"github.com/dropDatabas3/sideline/internal/league"
	"github.com/dropDatabas3/sideline/internal/observability/logger"
	"github.com/dropDatabas3/sideline/internal/store/core"
)

// ErrHasRegistrations bloquea el borrado de ligas con jugadores inscriptos.
var ErrHasRegistrations = errors.New("league has registered players")

// PlayFormats son los formatos de juego aceptados.
var PlayFormats = []string{"7v7", "5v5", "4v4", "3v3"}

// ErrBadPlayFormat indica un play_format fuera de la lista soportada.
var ErrBadPlayFormat = errors.New("unsupported play format")

const (
	activeLeaguesKey = "leagues:active"
	activeLeaguesTTL = 60 * time.Second
)

// Service concentra las reglas de negocio de ligas.
type Service struct {
	repo  core.LeagueRepository
	cache cache.Cache
}

func NewService(repo core.LeagueRepository, c cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

// CreateInput es lo que el caller propone para una liga nueva. Los punteros
// distinguen "no mandado" de valor cero.
type CreateInput struct {
	Name        string
	Description *string
	StartDate   time.Time
	NumWeeks    int
	PlayFormat  string

	TournamentFormat   league.Format
	RegularSeasonWeeks *int
	PlayoffWeeks       *int
	SwissRounds        *int
	SwissPairingMethod *string
	CompassDrawRounds  *int
	PlayoffTeams       *int
	PlayoffFormat      *string

	GameDuration int
	GamesPerWeek int
	MaxTeams     *int
	MinTeams     int

	RegistrationDeadline *time.Time
	RegistrationFee      *int
	Settings             map[string]any
}

// UpdateInput es un patch parcial: solo los campos no-nil se aplican.
type UpdateInput struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	NumWeeks    *int
	PlayFormat  *string

	TournamentFormat   *league.Format
	RegularSeasonWeeks *int
	PlayoffWeeks       *int
	SwissRounds        *int
	SwissPairingMethod *string
	CompassDrawRounds  *int
	PlayoffTeams       *int
	PlayoffFormat      *string

	GameDuration *int
	GamesPerWeek *int
	MaxTeams     *int
	MinTeams     *int

	RegistrationDeadline *time.Time
	RegistrationFee      *int
	Settings             map[string]any
}

func validPlayFormat(pf string) bool {
	for _, v := range PlayFormats {
		if v == pf {
			return true
		}
	}
	return false
}

// Create valida la configuración propuesta, deriva end_date y persiste.
func (s *Service) Create(ctx context.Context, createdBy string, in CreateInput) (*core.League, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", core.ErrInvalid)
	}
	if !validPlayFormat(in.PlayFormat) {
		return nil, fmt.Errorf("%w: %q", ErrBadPlayFormat, in.PlayFormat)
	}

	end, err := league.DeriveEndDate(league.Config{
		Format:             in.TournamentFormat,
		StartDate:          in.StartDate,
		NumWeeks:           in.NumWeeks,
		RegularSeasonWeeks: in.RegularSeasonWeeks,
		PlayoffWeeks:       in.PlayoffWeeks,
		SwissRounds:        in.SwissRounds,
		CompassDrawRounds:  in.CompassDrawRounds,
	})
	if err != nil {
		return nil, err
	}

	l := &core.League{
		Name:        in.Name,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     end,
		NumWeeks:    in.NumWeeks,
		PlayFormat:  in.PlayFormat,

		TournamentFormat:   in.TournamentFormat,
		RegularSeasonWeeks: in.RegularSeasonWeeks,
		PlayoffWeeks:       in.PlayoffWeeks,
		SwissRounds:        in.SwissRounds,
		SwissPairingMethod: in.SwissPairingMethod,
		CompassDrawRounds:  in.CompassDrawRounds,
		PlayoffTeams:       in.PlayoffTeams,
		PlayoffFormat:      in.PlayoffFormat,

		GameDuration: in.GameDuration,
		GamesPerWeek: in.GamesPerWeek,
		MaxTeams:     in.MaxTeams,
		MinTeams:     in.MinTeams,

		RegistrationDeadline: in.RegistrationDeadline,
		RegistrationFee:      in.RegistrationFee,
		Settings:             in.Settings,

		CreatedBy: createdBy,
		Active:    true,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	s.invalidateActive(ctx)
	return l, nil
}

// Get devuelve la liga por id (activa o no; la vista admin ve todo).
func (s *Service) Get(ctx context.Context, id string) (*core.League, error) {
	return s.repo.GetByID(ctx, id)
}

// ListAll devuelve todas las ligas, más recientes primero (vista admin).
func (s *Service) ListAll(ctx context.Context) ([]core.League, error) {
	return s.repo.List(ctx)
}

// ListActive devuelve las ligas activas, con un cache corto adelante: el
// listado público es el endpoint más golpeado y cambia poco.
func (s *Service) ListActive(ctx context.Context) ([]core.League, error) {
	if s.cache != nil {
		if b, ok := s.cache.Get(activeLeaguesKey); ok {
			var out []core.League
			if err := json.Unmarshal(b, &out); err == nil {
				return out, nil
			}
			// entrada corrupta: se descarta y se va a la base
			s.cache.Delete(activeLeaguesKey)
		}
	}

	out, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if b, err := json.Marshal(out); err == nil {
			s.cache.Set(activeLeaguesKey, b, activeLeaguesTTL)
		}
	}
	return out, nil
}

// Update aplica el patch sobre la liga actual, revalida la configuración de
// formato resultante y recalcula end_date. El recálculo corre siempre que el
// patch toque algo de lo que la fecha depende.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*core.League, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name is required", core.ErrInvalid)
		}
		l.Name = *in.Name
	}
	if in.Description != nil {
		l.Description = in.Description
	}
	if in.PlayFormat != nil {
		if !validPlayFormat(*in.PlayFormat) {
			return nil, fmt.Errorf("%w: %q", ErrBadPlayFormat, *in.PlayFormat)
		}
		l.PlayFormat = *in.PlayFormat
	}

	touchesSchedule := in.StartDate != nil || in.NumWeeks != nil ||
		in.TournamentFormat != nil || in.RegularSeasonWeeks != nil ||
		in.PlayoffWeeks != nil || in.SwissRounds != nil || in.CompassDrawRounds != nil

	if in.StartDate != nil {
		l.StartDate = *in.StartDate
	}
	if in.NumWeeks != nil {
		l.NumWeeks = *in.NumWeeks
	}
	if in.TournamentFormat != nil {
		l.TournamentFormat = *in.TournamentFormat
	}
	if in.RegularSeasonWeeks != nil {
		l.RegularSeasonWeeks = in.RegularSeasonWeeks
	}
	if in.PlayoffWeeks != nil {
		l.PlayoffWeeks = in.PlayoffWeeks
	}
	if in.SwissRounds != nil {
		l.SwissRounds = in.SwissRounds
	}
	if in.SwissPairingMethod != nil {
		l.SwissPairingMethod = in.SwissPairingMethod
	}
	if in.CompassDrawRounds != nil {
		l.CompassDrawRounds = in.CompassDrawRounds
	}
	if in.PlayoffTeams != nil {
		l.PlayoffTeams = in.PlayoffTeams
	}
	if in.PlayoffFormat != nil {
		l.PlayoffFormat = in.PlayoffFormat
	}
	if in.GameDuration != nil {
		l.GameDuration = *in.GameDuration
	}
	if in.GamesPerWeek != nil {
		l.GamesPerWeek = *in.GamesPerWeek
	}
	if in.MaxTeams != nil {
		l.MaxTeams = in.MaxTeams
	}
	if in.MinTeams != nil {
		l.MinTeams = *in.MinTeams
	}
	if in.RegistrationDeadline != nil {
		l.RegistrationDeadline = in.RegistrationDeadline
	}
	if in.RegistrationFee != nil {
		l.RegistrationFee = in.RegistrationFee
	}
	if in.Settings != nil {
		l.Settings = in.Settings
	}

	// La config mergeada se valida entera: un patch no puede dejar la liga
	// en un estado que Create hubiera rechazado.
	if touchesSchedule {
		end, err := league.DeriveEndDate(l.FormatConfig())
		if err != nil {
			return nil, err
		}
		l.EndDate = end
	} else if err := league.Validate(l.FormatConfig()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	s.invalidateActive(ctx)
	return l, nil
}

// Delete desactiva la liga. Con jugadores inscriptos no se puede: primero
// hay que resolver las registraciones.
func (s *Service) Delete(ctx context.Context, id string) error {
	counts, err := s.repo.Counts(ctx, id)
	if err != nil {
		return err
	}
	if counts.RegisteredPlayers > 0 {
		return fmt.Errorf("%w (%d)", ErrHasRegistrations, counts.RegisteredPlayers)
	}

	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrNotFound
	}
	s.invalidateActive(ctx)
	return nil
}

// Stats devuelve los conteos de inscriptos de la liga.
func (s *Service) Stats(ctx context.Context, id string) (core.LeagueCounts, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return core.LeagueCounts{}, err
	}
	return s.repo.Counts(ctx, id)
}

func (s *Service) invalidateActive(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(activeLeaguesKey)
	logger.From(ctx).Debug("active leagues cache invalidated")
}
