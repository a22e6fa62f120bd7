package authn

import (
	"context"
	"errors"

	"github.com/dropDatabas3/sideline/internal/observability/logger"
	"github.com/dropDatabas3/sideline/internal/store/core"
)

// Principal es la identidad autorizada que sale del gate, para uso de los
// handlers (auditoría, created_by, chequeos por rol).
type Principal struct {
	Email string
	Role  core.AdminRole
}

// TrustStore es lo único que el gate necesita del trust store.
// core.AdminRepository lo satisface.
type TrustStore interface {
	LookupActive(ctx context.Context, email string) (*core.AdminGrant, error)
}

// TokenVerifier abstrae el verifier para poder testear el gate sin claves.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*ClaimSet, error)
}

// Gate decide si un bearer token habilita acceso admin. Corre antes de
// cualquier mutación admin; es puro read path, idempotente.
type Gate struct {
	verifier TokenVerifier
	admins   TrustStore
}

func NewGate(v TokenVerifier, admins TrustStore) *Gate {
	return &Gate{verifier: v, admins: admins}
}

// AuthorizeAdmin verifica el token y cruza el primer email del claim set
// contra el trust store. Errores posibles: ErrUnauthenticated (cualquier
// fallo del verifier, el detalle queda en logs), ErrNoEmail, ErrNotAuthorized.
func (g *Gate) AuthorizeAdmin(ctx context.Context, token string) (*Principal, error) {
	claims, err := g.verifier.Verify(ctx, token)
	if err != nil {
		// El motivo puntual es para los logs; al caller le llega siempre
		// el mismo error para no filtrar qué parte de la validación falló.
		logger.From(ctx).Debug("token rejected", logger.Err(err))
		return nil, ErrUnauthenticated
	}

	if len(claims.Emails) == 0 {
		return nil, ErrNoEmail
	}
	email := core.NormalizeEmail(claims.Emails[0])

	grant, err := g.admins.LookupActive(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}

	return &Principal{Email: grant.Email, Role: grant.Role}, nil
}
