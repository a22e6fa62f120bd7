package authn

import (
	"context"
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ClaimSet es el cuerpo decodificado y verificado de un token. Vive lo que
// dura el request; no se persiste nunca.
type ClaimSet struct {
	Subject   string
	Issuer    string
	Emails    []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// clerkClaims mapea el shape de los session tokens de Clerk. El claim de
// contacto viene como lista (un usuario puede tener varias direcciones).
type clerkClaims struct {
	jwtv5.RegisteredClaims
	Emails []string `json:"email_addresses"`
}

// KeySource entrega el key set vigente. En producción es *KeySetCache.
type KeySource interface {
	Keys(ctx context.Context) ([]SigningKey, error)
}

// Verifier valida bearer tokens contra el key set del emisor.
// Stateless: cada Verify es independiente, el mismo token puede verificarse
// N veces (semántica bearer; la revocación es solo por expiry).
type Verifier struct {
	keys   KeySource
	issuer string

	// now inyectable para tests de expiración.
	now func() time.Time
}

func NewVerifier(keys KeySource, issuer string) *Verifier {
	return &Verifier{keys: keys, issuer: issuer, now: time.Now}
}

// Verify valida el token y devuelve sus claims, o uno de los errores tipados
// del paquete (ErrMalformedToken, ErrUnknownKey, ErrSignatureInvalid,
// ErrIssuerMismatch, ErrExpired, ErrKeyFetch).
//
// Orden de chequeos: estructura → kid conocido → firma → issuer → expiry.
// Audience NO se chequea: los tokens de Clerk son audience-less (propiedad
// aceptada del emisor, revisar si algún día es multi-audience).
func (v *Verifier) Verify(ctx context.Context, token string) (*ClaimSet, error) {
	keyfunc := func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKey
		}
		keys, err := v.keys.Keys(ctx)
		if err != nil {
			return nil, err // ErrKeyFetch envuelto
		}
		for i := range keys {
			if keys[i].ID == kid {
				// El alg lo dicta la clave publicada, no el header del token:
				// un token que declara otro método no llega ni a verificarse.
				if t.Method.Alg() != keys[i].Algorithm {
					return nil, ErrSignatureInvalid
				}
				return keys[i].Key, nil
			}
		}
		return nil, ErrUnknownKey
	}

	// iss y exp se validan a mano abajo para poder devolver errores tipados
	// con el reloj inyectado.
	parser := jwtv5.NewParser(jwtv5.WithoutClaimsValidation())

	claims := &clerkClaims{}
	_, err := parser.ParseWithClaims(token, claims, keyfunc)
	if err != nil {
		switch {
		case errors.Is(err, ErrKeyFetch):
			return nil, err
		case errors.Is(err, ErrUnknownKey):
			return nil, ErrUnknownKey
		case errors.Is(err, ErrSignatureInvalid), errors.Is(err, jwtv5.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		case errors.Is(err, jwtv5.ErrTokenMalformed):
			return nil, ErrMalformedToken
		default:
			return nil, ErrMalformedToken
		}
	}

	// issuer: comparación textual exacta, sin patterns ni subdominios
	if claims.Issuer != v.issuer {
		return nil, ErrIssuerMismatch
	}

	// expiry: exp ausente cuenta como vencido (fail closed)
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(v.now()) {
		return nil, ErrExpired
	}

	cs := &ClaimSet{
		Subject:   claims.Subject,
		Issuer:    claims.Issuer,
		Emails:    claims.Emails,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		cs.IssuedAt = claims.IssuedAt.Time
	}
	return cs, nil
}
