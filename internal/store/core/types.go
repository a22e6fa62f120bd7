// Package core define los tipos y contratos del store. Los drivers (pg) los
// implementan; los controllers dependen solo de estas interfaces.
package core

import (
	"time"

	"github.com/dropDatabas3/sideline/internal/league"
)

// AdminRole es el rol de un admin autorizado.
type AdminRole string

const (
	RoleAdmin      AdminRole = "admin"
	RoleSuperAdmin AdminRole = "super_admin"
)

// Valid reporta si r es un rol conocido.
func (r AdminRole) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// AdminGrant es el registro de confianza local: email (normalizado en minúsculas,
// único) → rol. Se desactiva con revoke, nunca se borra la fila.
type AdminGrant struct {
	ID        string
	Email     string
	Role      AdminRole
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// League es la entidad liga completa. EndDate siempre se deriva con
// league.DeriveEndDate a partir del resto de los campos; nunca se setea a mano.
type League struct {
	ID          string
	Name        string
	Description *string
	StartDate   time.Time
	EndDate     time.Time
	NumWeeks    int

	// PlayFormat es el formato de juego: "7v7", "5v5", "4v4", "3v3".
	PlayFormat string

	TournamentFormat   league.Format
	RegularSeasonWeeks *int
	PlayoffWeeks       *int
	SwissRounds        *int
	SwissPairingMethod *string
	CompassDrawRounds  *int
	PlayoffTeams       *int
	PlayoffFormat      *string

	GameDuration int // minutos por partido
	GamesPerWeek int
	MaxTeams     *int
	MinTeams     int

	RegistrationDeadline *time.Time
	RegistrationFee      *int // en centavos

	// Settings es un blob JSON libre para features futuras.
	Settings map[string]any

	CreatedBy string // email del admin que la creó
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FormatConfig arma el league.Config que miran las reglas de formato.
func (l *League) FormatConfig() league.Config {
	return league.Config{
		Format:             l.TournamentFormat,
		StartDate:          l.StartDate,
		NumWeeks:           l.NumWeeks,
		RegularSeasonWeeks: l.RegularSeasonWeeks,
		PlayoffWeeks:       l.PlayoffWeeks,
		SwissRounds:        l.SwissRounds,
		CompassDrawRounds:  l.CompassDrawRounds,
	}
}

// LeagueCounts son los conteos de inscriptos que acompañan la vista admin.
type LeagueCounts struct {
	RegisteredPlayers int
	RegisteredTeams   int
}
