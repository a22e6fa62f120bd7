package authn

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://issuer.example/"

// fakeKeys es un KeySource fijo, sin red.
type fakeKeys struct {
	keys []SigningKey
	err  error
}

func (f *fakeKeys) Keys(ctx context.Context) ([]SigningKey, error) {
	return f.keys, f.err
}

type signer struct {
	kid  string
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

func newSigner(t *testing.T, kid string) signer {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return signer{kid: kid, priv: priv, pub: pub}
}

func (s signer) key() SigningKey {
	return SigningKey{ID: s.kid, Algorithm: "EdDSA", Key: s.pub}
}

// mint firma un token EdDSA con las claims dadas.
func (s signer) mint(t *testing.T, claims jwtv5.MapClaims) string {
	t.Helper()
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["kid"] = s.kid
	out, err := tk.SignedString(s.priv)
	require.NoError(t, err)
	return out
}

func baseClaims(exp time.Time) jwtv5.MapClaims {
	return jwtv5.MapClaims{
		"iss":             testIssuer,
		"sub":             "user_2x1",
		"email_addresses": []string{"user@x.com"},
		"iat":             time.Now().Add(-time.Minute).Unix(),
		"exp":             exp.Unix(),
	}
}

func TestVerify_ValidToken(t *testing.T) {
	s := newSigner(t, "A")
	v := NewVerifier(&fakeKeys{keys: []SigningKey{s.key()}}, testIssuer)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := s.mint(t, baseClaims(exp))

	cs, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "user_2x1", cs.Subject)
	require.Equal(t, testIssuer, cs.Issuer)
	require.Equal(t, []string{"user@x.com"}, cs.Emails)
	require.True(t, cs.ExpiresAt.Equal(exp))
}

func TestVerify_UnknownKID(t *testing.T) {
	known := newSigner(t, "A")
	rogue := newSigner(t, "Z") // kid fuera del key set

	v := NewVerifier(&fakeKeys{keys: []SigningKey{known.key()}}, testIssuer)
	token := rogue.mint(t, baseClaims(time.Now().Add(time.Hour)))

	_, err := v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrUnknownKey)
}

func TestVerify_WrongKeySignature(t *testing.T) {
	a := newSigner(t, "A")
	impostor := newSigner(t, "A") // mismo kid, otra clave

	v := NewVerifier(&fakeKeys{keys: []SigningKey{a.key()}}, testIssuer)
	token := impostor.mint(t, baseClaims(time.Now().Add(time.Hour)))

	_, err := v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerify_AlgorithmPinnedToPublishedKey(t *testing.T) {
	// La clave publicada es EdDSA; un token que declara HS256 con ese kid
	// no debe ni intentar verificarse con la clave como secreto HMAC.
	s := newSigner(t, "A")
	v := NewVerifier(&fakeKeys{keys: []SigningKey{s.key()}}, testIssuer)

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, baseClaims(time.Now().Add(time.Hour)))
	tk.Header["kid"] = "A"
	token, err := tk.SignedString([]byte(s.pub))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerify_IssuerMismatch(t *testing.T) {
	s := newSigner(t, "A")
	v := NewVerifier(&fakeKeys{keys: []SigningKey{s.key()}}, testIssuer)

	claims := baseClaims(time.Now().Add(time.Hour))
	claims["iss"] = "https://otro.example/" // firma válida, issuer ajeno
	token := s.mint(t, claims)

	_, err := v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrIssuerMismatch)
}

func TestVerify_MonotonicExpiry(t *testing.T) {
	s := newSigner(t, "A")
	v := NewVerifier(&fakeKeys{keys: []SigningKey{s.key()}}, testIssuer)

	exp := time.Now().Add(time.Hour)
	token := s.mint(t, baseClaims(exp))

	// en T (antes de exp): válido
	v.now = func() time.Time { return exp.Add(-time.Second) }
	_, err := v.Verify(context.Background(), token)
	require.NoError(t, err)

	// en T' (después de exp): vencido, mismo token
	v.now = func() time.Time { return exp.Add(time.Second) }
	_, err = v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerify_MissingExpFailsClosed(t *testing.T) {
	s := newSigner(t, "A")
	v := NewVerifier(&fakeKeys{keys: []SigningKey{s.key()}}, testIssuer)

	claims := baseClaims(time.Now())
	delete(claims, "exp")
	token := s.mint(t, claims)

	_, err := v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerify_Malformed(t *testing.T) {
	s := newSigner(t, "A")
	v := NewVerifier(&fakeKeys{keys: []SigningKey{s.key()}}, testIssuer)

	for _, tok := range []string{"", "garbage", "a.b", "no es un jwt ni de lejos"} {
		_, err := v.Verify(context.Background(), tok)
		require.ErrorIs(t, err, ErrMalformedToken, "token %q", tok)
	}
}

func TestVerify_KeyFetchFailurePropagates(t *testing.T) {
	s := newSigner(t, "A")
	v := NewVerifier(&fakeKeys{err: ErrKeyFetch}, testIssuer)

	token := s.mint(t, baseClaims(time.Now().Add(time.Hour)))
	_, err := v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrKeyFetch)
}

func TestVerify_Stateless(t *testing.T) {
	s := newSigner(t, "A")
	v := NewVerifier(&fakeKeys{keys: []SigningKey{s.key()}}, testIssuer)

	token := s.mint(t, baseClaims(time.Now().Add(time.Hour)))

	// el mismo token verifica N veces (bearer: replay dentro del expiry es válido)
	for i := 0; i < 3; i++ {
		_, err := v.Verify(context.Background(), token)
		require.NoError(t, err)
	}
}
