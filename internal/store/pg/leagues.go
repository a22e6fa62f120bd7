package pg

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dropDatabas3/sideline/internal/store/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ core.LeagueRepository = (*Store)(nil)

// leagueCols es la lista canónica de columnas; scanLeague tiene que scanear
// exactamente en este orden.
const leagueCols = `
id, name, description, start_date, end_date, num_weeks, play_format,
tournament_format, regular_season_weeks, playoff_weeks, swiss_rounds,
swiss_pairing_method, compass_draw_rounds, playoff_teams, playoff_format,
game_duration, games_per_week, max_teams, min_teams,
registration_deadline, registration_fee, settings,
created_by, is_active, created_at, updated_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanLeague(r rowScanner) (*core.League, error) {
	var l core.League
	var settings []byte
	err := r.Scan(
		&l.ID, &l.Name, &l.Description, &l.StartDate, &l.EndDate, &l.NumWeeks, &l.PlayFormat,
		&l.TournamentFormat, &l.RegularSeasonWeeks, &l.PlayoffWeeks, &l.SwissRounds,
		&l.SwissPairingMethod, &l.CompassDrawRounds, &l.PlayoffTeams, &l.PlayoffFormat,
		&l.GameDuration, &l.GamesPerWeek, &l.MaxTeams, &l.MinTeams,
		&l.RegistrationDeadline, &l.RegistrationFee, &settings,
		&l.CreatedBy, &l.Active, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		// settings es un blob libre; si no parsea lo dejamos nil en vez de romper la lectura
		_ = json.Unmarshal(settings, &l.Settings)
	}
	return &l, nil
}

func settingsJSON(l *core.League) ([]byte, error) {
	if l.Settings == nil {
		return nil, nil
	}
	return json.Marshal(l.Settings)
}

// ---------- LECTURAS ----------

func (s *Store) GetByID(ctx context.Context, id string) (*core.League, error) {
	const q = `SELECT ` + leagueCols + ` FROM leagues WHERE id = $1;`
	l, err := scanLeague(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *Store) List(ctx context.Context) ([]core.League, error) {
	const q = `SELECT ` + leagueCols + ` FROM leagues ORDER BY created_at DESC;`
	return s.queryLeagues(ctx, q)
}

func (s *Store) ListActive(ctx context.Context) ([]core.League, error) {
	const q = `SELECT ` + leagueCols + ` FROM leagues WHERE is_active = TRUE ORDER BY start_date;`
	return s.queryLeagues(ctx, q)
}

func (s *Store) queryLeagues(ctx context.Context, q string, args ...any) ([]core.League, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.League
	for rows.Next() {
		l, err := scanLeague(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// Counts: jugadores con registración confirmada y equipos activos de la liga.
func (s *Store) Counts(ctx context.Context, leagueID string) (core.LeagueCounts, error) {
	const q = `
SELECT
  (SELECT count(*) FROM players WHERE league_id = $1 AND registration_status = 'registered'),
  (SELECT count(*) FROM teams   WHERE league_id = $1 AND is_active = TRUE);`
	var c core.LeagueCounts
	if err := s.pool.QueryRow(ctx, q, leagueID).Scan(&c.RegisteredPlayers, &c.RegisteredTeams); err != nil {
		return core.LeagueCounts{}, err
	}
	return c, nil
}

// ---------- ESCRITURAS ----------

func (s *Store) Create(ctx context.Context, l *core.League) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	settings, err := settingsJSON(l)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO leagues (
  id, name, description, start_date, end_date, num_weeks, play_format,
  tournament_format, regular_season_weeks, playoff_weeks, swiss_rounds,
  swiss_pairing_method, compass_draw_rounds, playoff_teams, playoff_format,
  game_duration, games_per_week, max_teams, min_teams,
  registration_deadline, registration_fee, settings,
  created_by, is_active, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,TRUE,now(),now()
)
RETURNING created_at, updated_at, is_active;`
	return s.pool.QueryRow(ctx, q,
		l.ID, l.Name, l.Description, l.StartDate, l.EndDate, l.NumWeeks, l.PlayFormat,
		string(l.TournamentFormat), l.RegularSeasonWeeks, l.PlayoffWeeks, l.SwissRounds,
		l.SwissPairingMethod, l.CompassDrawRounds, l.PlayoffTeams, l.PlayoffFormat,
		l.GameDuration, l.GamesPerWeek, l.MaxTeams, l.MinTeams,
		l.RegistrationDeadline, l.RegistrationFee, settings,
		l.CreatedBy,
	).Scan(&l.CreatedAt, &l.UpdatedAt, &l.Active)
}

func (s *Store) Update(ctx context.Context, l *core.League) error {
	settings, err := settingsJSON(l)
	if err != nil {
		return err
	}
	const q = `
UPDATE leagues SET
  name = $2, description = $3, start_date = $4, end_date = $5, num_weeks = $6,
  play_format = $7, tournament_format = $8, regular_season_weeks = $9,
  playoff_weeks = $10, swiss_rounds = $11, swiss_pairing_method = $12,
  compass_draw_rounds = $13, playoff_teams = $14, playoff_format = $15,
  game_duration = $16, games_per_week = $17, max_teams = $18, min_teams = $19,
  registration_deadline = $20, registration_fee = $21, settings = $22,
  is_active = $23, updated_at = now()
WHERE id = $1
RETURNING updated_at;`
	err = s.pool.QueryRow(ctx, q,
		l.ID, l.Name, l.Description, l.StartDate, l.EndDate, l.NumWeeks,
		l.PlayFormat, string(l.TournamentFormat), l.RegularSeasonWeeks,
		l.PlayoffWeeks, l.SwissRounds, l.SwissPairingMethod,
		l.CompassDrawRounds, l.PlayoffTeams, l.PlayoffFormat,
		l.GameDuration, l.GamesPerWeek, l.MaxTeams, l.MinTeams,
		l.RegistrationDeadline, l.RegistrationFee, settings,
		l.Active,
	).Scan(&l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

func (s *Store) SoftDelete(ctx context.Context, id string) (bool, error) {
	const q = `
UPDATE leagues
SET is_active = FALSE, updated_at = now()
WHERE id = $1;`
	tag, err := s.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
