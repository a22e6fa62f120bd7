package core

import "context"

// AdminRepository es el trust store local: el gate de autorización lo consulta
// en cada request admin, y los endpoints de gestión lo mutan.
//
// Todos los emails llegan ya normalizados (ver NormalizeEmail); cada operación
// es su propia unidad atómica, no hay transacciones que crucen llamadas.
type AdminRepository interface {
	// LookupActive devuelve el grant activo para el email, o ErrNotFound
	// (tanto si no existe como si está revocado).
	LookupActive(ctx context.Context, email string) (*AdminGrant, error)

	// Grant crea (o reactiva) el grant para el email con el rol dado.
	// Upsert: la invariante es a lo sumo una fila por email normalizado.
	Grant(ctx context.Context, email string, role AdminRole) (*AdminGrant, error)

	// Revoke desactiva el grant (soft delete). Devuelve false si el email
	// no tiene fila.
	Revoke(ctx context.Context, email string) (bool, error)

	// SetRole cambia el rol del grant. Devuelve false si el email no tiene fila.
	SetRole(ctx context.Context, email string, role AdminRole) (bool, error)

	// ListActive devuelve los grants activos ordenados por fecha de alta.
	ListActive(ctx context.Context) ([]AdminGrant, error)
}

// LeagueRepository persiste ligas. Los conteos de jugadores/equipos salen de
// las tablas de registración (players, teams) que carga otro sistema.
type LeagueRepository interface {
	Create(ctx context.Context, l *League) error
	GetByID(ctx context.Context, id string) (*League, error)

	// List devuelve todas las ligas, más recientes primero (vista admin).
	List(ctx context.Context) ([]League, error)

	// ListActive devuelve solo ligas activas (vista pública).
	ListActive(ctx context.Context) ([]League, error)

	Update(ctx context.Context, l *League) error

	// SoftDelete marca la liga como inactiva. Devuelve false si no existe.
	SoftDelete(ctx context.Context, id string) (bool, error)

	// Counts devuelve jugadores registrados y equipos activos de la liga.
	Counts(ctx context.Context, leagueID string) (LeagueCounts, error)
}
