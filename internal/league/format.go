// Package league contiene las reglas puras de formato de torneo y la derivación
// de la fecha de cierre. Sin I/O: todo lo que entra y sale son valores.
package league

import (
	"errors"
	"fmt"
	"time"
)

// Format es el formato de torneo de una liga.
type Format string

const (
	RoundRobin     Format = "round_robin"
	Swiss          Format = "swiss"
	PlayoffBracket Format = "playoff_bracket"
	CompassDraw    Format = "compass_draw"
)

// Formats lista los formatos soportados (para mensajes de error y validación de input).
var Formats = []Format{RoundRobin, Swiss, PlayoffBracket, CompassDraw}

// Valid reporta si f es un formato conocido.
func (f Format) Valid() bool {
	switch f {
	case RoundRobin, Swiss, PlayoffBracket, CompassDraw:
		return true
	}
	return false
}

// Errores de validación por formato. Cada uno mapea a un 400 con mensaje propio;
// nunca se colapsan en un genérico.
var (
	ErrUnknownFormat      = errors.New("unknown tournament format")
	ErrMissingSwissRounds = errors.New("swiss_rounds is required for Swiss tournament format")
	ErrMissingPlayoffs    = errors.New("regular_season_weeks and playoff_weeks are required for playoff bracket format")
	ErrWeekSumMismatch    = errors.New("regular_season_weeks + playoff_weeks must equal num_weeks")
	ErrMissingCompass     = errors.New("compass_draw_rounds is required for compass draw format")
	ErrBadNumWeeks        = errors.New("num_weeks must be at least 1")
)

// Config es la configuración propuesta de una liga, lo mínimo que las reglas
// de formato necesitan mirar. Los punteros distinguen "ausente" de cero.
type Config struct {
	Format             Format
	StartDate          time.Time
	NumWeeks           int
	RegularSeasonWeeks *int
	PlayoffWeeks       *int
	SwissRounds        *int
	CompassDrawRounds  *int
}

// Validate chequea que los campos requeridos por el formato estén presentes y
// sean consistentes entre sí.
func Validate(c Config) error {
	if c.NumWeeks < 1 {
		return ErrBadNumWeeks
	}
	switch c.Format {
	case RoundRobin:
		// sin campos extra
		return nil
	case Swiss:
		if c.SwissRounds == nil || *c.SwissRounds <= 0 {
			return ErrMissingSwissRounds
		}
		return nil
	case PlayoffBracket:
		if c.RegularSeasonWeeks == nil || c.PlayoffWeeks == nil {
			return ErrMissingPlayoffs
		}
		if *c.RegularSeasonWeeks+*c.PlayoffWeeks != c.NumWeeks {
			return fmt.Errorf("%w (%d+%d != %d)", ErrWeekSumMismatch,
				*c.RegularSeasonWeeks, *c.PlayoffWeeks, c.NumWeeks)
		}
		return nil
	case CompassDraw:
		if c.CompassDrawRounds == nil || *c.CompassDrawRounds <= 0 {
			return ErrMissingCompass
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Format)
	}
}

// DeriveEndDate valida la configuración y calcula la fecha de cierre.
//
// La fórmula es la misma para todos los formatos:
//
//	end_date = start_date + (num_weeks - 1) semanas
//
// El backend viejo tenía una rama aparte para playoff_bracket que sumaba
// regular_season_weeks + (num_weeks - regular_season_weeks)... o sea num_weeks.
// Era código muerto; acá queda una sola fórmula.
func DeriveEndDate(c Config) (time.Time, error) {
	if err := Validate(c); err != nil {
		return time.Time{}, err
	}
	return c.StartDate.AddDate(0, 0, (c.NumWeeks-1)*7), nil
}
