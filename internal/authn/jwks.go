package authn

import (
	"context"
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dropDatabas3/sideline/internal/observability/logger"
	"golang.org/x/sync/singleflight"
)

// SigningKey es una clave pública de verificación publicada por el emisor.
// Inmutable una vez parseada; un fetch reemplaza el set completo, nunca
// se mergean sets parciales.
type SigningKey struct {
	ID        string
	Algorithm string // "RS256", "EdDSA", ...
	Key       crypto.PublicKey
}

// ───── JWKS wire format ─────

type jwk struct {
	KID string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`

	// RSA
	N string `json:"n"`
	E string `json:"e"`

	// OKP (Ed25519)
	Crv string `json:"crv"`
	X   string `json:"x"`
}

type jwksDoc struct {
	Keys []jwk `json:"keys"`
}

// parseJWKS decodifica el body del well-known endpoint a claves usables.
// Entradas con kty que no manejamos se saltean (el publisher puede agregar
// tipos nuevos); un documento sin ninguna clave usable es un fetch fallido.
func parseJWKS(body []byte) ([]SigningKey, error) {
	var doc jwksDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("jwks: invalid JSON: %w", err)
	}

	out := make([]SigningKey, 0, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.KID == "" {
			continue
		}
		switch k.Kty {
		case "RSA":
			pub, err := parseRSA(k)
			if err != nil {
				return nil, fmt.Errorf("jwks: key %q: %w", k.KID, err)
			}
			alg := k.Alg
			if alg == "" {
				alg = "RS256"
			}
			out = append(out, SigningKey{ID: k.KID, Algorithm: alg, Key: pub})
		case "OKP":
			if k.Crv != "Ed25519" {
				continue
			}
			raw, err := base64.RawURLEncoding.DecodeString(k.X)
			if err != nil || len(raw) != ed25519.PublicKeySize {
				return nil, fmt.Errorf("jwks: key %q: bad Ed25519 material", k.KID)
			}
			out = append(out, SigningKey{ID: k.KID, Algorithm: "EdDSA", Key: ed25519.PublicKey(raw)})
		default:
			// kty desconocido: ignorar
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("jwks: no usable keys in document")
	}
	return out, nil
}

func parseRSA(k jwk) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("bad modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("bad exponent: %w", err)
	}
	e := 0
	for _, b := range eb {
		e = e<<8 | int(b)
	}
	if e <= 0 {
		return nil, fmt.Errorf("bad exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}

// ───── cache ─────

type keysetSnapshot struct {
	keys      []SigningKey
	fetchedAt time.Time
}

// KeySetCache mantiene el key set del emisor con invalidación por edad.
//
// Política:
//   - hit fresco (edad < TTL): cero red.
//   - miss/vencido: UN fetch (coalescido con singleflight si hay misses
//     concurrentes) y swap atómico del snapshot.
//   - fetch fallido con snapshot previo: se sirve el viejo (serve-stale-on-error).
//   - fetch fallido sin snapshot: ErrKeyFetch.
//
// Los lectores cargan el puntero atómico y ven siempre una lista completa;
// el writer nunca los bloquea ni ellos a él.
type KeySetCache struct {
	// URL del well-known JWKS endpoint.
	URL string
	// TTL del snapshot. Default: 1h.
	TTL time.Duration
	// HTTP es el cliente para el fetch; su Timeout acota el request.
	HTTP *http.Client
	// Now es el reloj, inyectable para tests de expiración.
	Now func() time.Time

	snap atomic.Pointer[keysetSnapshot]
	sf   singleflight.Group
}

// NewKeySetCache arma el cache con el timeout defensivo para el fetch.
// No toca la red: el primer fetch ocurre recién en el primer Keys().
func NewKeySetCache(url string, ttl, fetchTimeout time.Duration) *KeySetCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 5 * time.Second
	}
	return &KeySetCache{
		URL:  url,
		TTL:  ttl,
		HTTP: &http.Client{Timeout: fetchTimeout},
		Now:  time.Now,
	}
}

// Keys devuelve el key set vigente, yendo a la red solo en miss/vencimiento.
func (c *KeySetCache) Keys(ctx context.Context) ([]SigningKey, error) {
	if s := c.snap.Load(); s != nil && c.Now().Sub(s.fetchedAt) < c.TTL {
		return s.keys, nil
	}

	v, err, _ := c.sf.Do("jwks", func() (any, error) {
		// Re-chequear adentro del vuelo: otro caller pudo refrescar mientras
		// esperábamos el turno.
		if s := c.snap.Load(); s != nil && c.Now().Sub(s.fetchedAt) < c.TTL {
			return s.keys, nil
		}

		keys, err := c.fetch(ctx)
		if err != nil {
			if s := c.snap.Load(); s != nil {
				logger.Named("authn.jwks").Warn("fetch failed, serving stale key set",
					logger.Err(err), logger.Age(c.Now().Sub(s.fetchedAt)))
				return s.keys, nil
			}
			return nil, fmt.Errorf("%w: %v", ErrKeyFetch, err)
		}

		c.snap.Store(&keysetSnapshot{keys: keys, fetchedAt: c.Now()})
		logger.Named("authn.jwks").Info("key set refreshed", logger.Count(len(keys)))
		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]SigningKey), nil
}

func (c *KeySetCache) fetch(ctx context.Context) ([]SigningKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("jwks: endpoint returned %d", resp.StatusCode)
	}

	// 1MB sobra para cualquier JWKS razonable
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	return parseJWKS(body)
}
