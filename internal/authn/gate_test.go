package authn

import (
	"context"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/sideline/internal/store/core"
)

// memTrust es un trust store en memoria con la misma semántica que pg:
// una fila por email normalizado, revoke = soft delete.
type memTrust struct {
	grants map[string]*core.AdminGrant
}

func newMemTrust() *memTrust {
	return &memTrust{grants: map[string]*core.AdminGrant{}}
}

func (m *memTrust) LookupActive(ctx context.Context, email string) (*core.AdminGrant, error) {
	g, ok := m.grants[core.NormalizeEmail(email)]
	if !ok || !g.Active {
		return nil, core.ErrNotFound
	}
	return g, nil
}

func (m *memTrust) grant(email string, role core.AdminRole) {
	e := core.NormalizeEmail(email)
	m.grants[e] = &core.AdminGrant{ID: e, Email: e, Role: role, Active: true}
}

func (m *memTrust) revoke(email string) {
	if g, ok := m.grants[core.NormalizeEmail(email)]; ok {
		g.Active = false
	}
}

// fakeVerifier devuelve claims fijas o un error.
type fakeVerifier struct {
	claims *ClaimSet
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*ClaimSet, error) {
	return f.claims, f.err
}

func TestAuthorizeAdmin_VerifierFailureCollapses(t *testing.T) {
	trust := newMemTrust()
	trust.grant("user@x.com", core.RoleAdmin)

	// Cualquier error del verifier → ErrUnauthenticated, sin distinguir cuál
	for _, verr := range []error{ErrMalformedToken, ErrUnknownKey, ErrSignatureInvalid, ErrIssuerMismatch, ErrExpired, ErrKeyFetch} {
		g := NewGate(&fakeVerifier{err: verr}, trust)
		_, err := g.AuthorizeAdmin(context.Background(), "whatever")
		require.ErrorIs(t, err, ErrUnauthenticated, "verifier error %v", verr)
	}
}

func TestAuthorizeAdmin_NoEmail(t *testing.T) {
	g := NewGate(&fakeVerifier{claims: &ClaimSet{Subject: "user_1"}}, newMemTrust())
	_, err := g.AuthorizeAdmin(context.Background(), "tok")
	require.ErrorIs(t, err, ErrNoEmail)
}

func TestAuthorizeAdmin_NotAuthorized(t *testing.T) {
	g := NewGate(&fakeVerifier{claims: &ClaimSet{Emails: []string{"nadie@x.com"}}}, newMemTrust())
	_, err := g.AuthorizeAdmin(context.Background(), "tok")
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestAuthorizeAdmin_CaseInsensitive(t *testing.T) {
	trust := newMemTrust()
	trust.grant("admin@x.com", core.RoleSuperAdmin)

	g := NewGate(&fakeVerifier{claims: &ClaimSet{Emails: []string{"Admin@X.com"}}}, trust)
	p, err := g.AuthorizeAdmin(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "admin@x.com", p.Email)
	require.Equal(t, core.RoleSuperAdmin, p.Role)
}

func TestAuthorizeAdmin_RevokeTakesEffect(t *testing.T) {
	trust := newMemTrust()
	trust.grant("user@x.com", core.RoleAdmin)

	g := NewGate(&fakeVerifier{claims: &ClaimSet{Emails: []string{"user@x.com"}}}, trust)

	_, err := g.AuthorizeAdmin(context.Background(), "tok")
	require.NoError(t, err)

	trust.revoke("user@x.com")
	_, err = g.AuthorizeAdmin(context.Background(), "tok")
	require.ErrorIs(t, err, ErrNotAuthorized)
}

// Flujo completo con piezas reales: JWKS publicado → verify → gate → grant → gate.
func TestAdminFlow_EndToEnd(t *testing.T) {
	// publisher con dos claves, kid A y B
	privs, body := jwksFixture(t, "A", "B")
	srv := newJWKSServer(t, body)

	cache := NewKeySetCache(srv.URL, time.Hour, time.Second)
	verifier := NewVerifier(cache, testIssuer)
	trust := newMemTrust()
	gate := NewGate(verifier, trust)

	// token firmado con B, issuer correcto, vence en 1h
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, jwtv5.MapClaims{
		"iss":             testIssuer,
		"sub":             "user_9",
		"email_addresses": []string{"User@X.com"},
		"exp":             time.Now().Add(time.Hour).Unix(),
	})
	tk.Header["kid"] = "B"
	token, err := tk.SignedString(privs["B"])
	require.NoError(t, err)

	// verify directo: claims intactas
	cs, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, []string{"User@X.com"}, cs.Emails)

	// sin grant: identidad válida pero sin autorización
	_, err = gate.AuthorizeAdmin(context.Background(), token)
	require.ErrorIs(t, err, ErrNotAuthorized)

	// con grant: el mismo token ahora autoriza
	trust.grant("user@x.com", core.RoleAdmin)
	p, err := gate.AuthorizeAdmin(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "user@x.com", p.Email)
	require.Equal(t, core.RoleAdmin, p.Role)
}
