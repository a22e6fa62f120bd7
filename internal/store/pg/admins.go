package pg

import (
	"context"
	"errors"

	"github.com/dropDatabas3/sideline/internal/store/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Compile-time check: *AdminStore satisface el trust store.
var _ core.AdminRepository = (*AdminStore)(nil)

// AdminStore expone la vista AdminRepository del Store. Existe porque
// core.AdminRepository y core.LeagueRepository declaran ListActive con
// firmas distintas y un mismo tipo no puede tener ambos métodos.
type AdminStore struct{ *Store }

// Admins devuelve la vista AdminRepository del Store.
func (s *Store) Admins() *AdminStore { return &AdminStore{s} }

// ---------- LECTURAS ----------

func (s *Store) LookupActive(ctx context.Context, email string) (*core.AdminGrant, error) {
	const q = `
SELECT id, email, role, is_active, created_at, updated_at
FROM admin_grants
WHERE email = $1 AND is_active = TRUE;`
	var g core.AdminGrant
	err := s.pool.QueryRow(ctx, q, core.NormalizeEmail(email)).
		Scan(&g.ID, &g.Email, &g.Role, &g.Active, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (s *AdminStore) ListActive(ctx context.Context) ([]core.AdminGrant, error) {
	const q = `
SELECT id, email, role, is_active, created_at, updated_at
FROM admin_grants
WHERE is_active = TRUE
ORDER BY created_at;`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.AdminGrant
	for rows.Next() {
		var g core.AdminGrant
		if err := rows.Scan(&g.ID, &g.Email, &g.Role, &g.Active, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ---------- ESCRITURAS ----------

// Grant: upsert por email. Si la fila existe (activa o revocada) se reactiva
// con el rol nuevo; la invariante es una sola fila por email normalizado.
func (s *Store) Grant(ctx context.Context, email string, role core.AdminRole) (*core.AdminGrant, error) {
	if !role.Valid() {
		return nil, core.ErrInvalid
	}
	const q = `
INSERT INTO admin_grants (id, email, role, is_active, created_at, updated_at)
VALUES ($1, $2, $3, TRUE, now(), now())
ON CONFLICT (email) DO UPDATE
  SET role = EXCLUDED.role, is_active = TRUE, updated_at = now()
RETURNING id, email, role, is_active, created_at, updated_at;`
	var g core.AdminGrant
	err := s.pool.QueryRow(ctx, q, uuid.NewString(), core.NormalizeEmail(email), string(role)).
		Scan(&g.ID, &g.Email, &g.Role, &g.Active, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Revoke: soft delete. La fila queda (auditoría); solo se apaga is_active.
func (s *Store) Revoke(ctx context.Context, email string) (bool, error) {
	const q = `
UPDATE admin_grants
SET is_active = FALSE, updated_at = now()
WHERE email = $1;`
	tag, err := s.pool.Exec(ctx, q, core.NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) SetRole(ctx context.Context, email string, role core.AdminRole) (bool, error) {
	if !role.Valid() {
		return false, core.ErrInvalid
	}
	const q = `
UPDATE admin_grants
SET role = $2, updated_at = now()
WHERE email = $1;`
	tag, err := s.pool.Exec(ctx, q, core.NormalizeEmail(email), string(role))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
