package authn

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// jwksFixture arma un documento JWKS válido con una clave Ed25519 por kid.
func jwksFixture(t *testing.T, kids ...string) (map[string]ed25519.PrivateKey, []byte) {
	t.Helper()
	privs := make(map[string]ed25519.PrivateKey, len(kids))
	doc := jwksDoc{}
	for _, kid := range kids {
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		privs[kid] = priv
		doc.Keys = append(doc.Keys, jwk{
			KID: kid, Kty: "OKP", Crv: "Ed25519", Alg: "EdDSA", Use: "sig",
			X: base64.RawURLEncoding.EncodeToString(pub),
		})
	}
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	return privs, b
}

func TestParseJWKS(t *testing.T) {
	t.Run("ed25519", func(t *testing.T) {
		_, body := jwksFixture(t, "kid-1", "kid-2")
		keys, err := parseJWKS(body)
		require.NoError(t, err)
		require.Len(t, keys, 2)
		require.Equal(t, "kid-1", keys[0].ID)
		require.Equal(t, "EdDSA", keys[0].Algorithm)
	})

	t.Run("rsa", func(t *testing.T) {
		rk, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		doc := jwksDoc{Keys: []jwk{{
			KID: "rsa-1", Kty: "RSA", Alg: "RS256", Use: "sig",
			N: base64.RawURLEncoding.EncodeToString(rk.N.Bytes()),
			E: base64.RawURLEncoding.EncodeToString([]byte{1, 0, 1}),
		}}}
		b, _ := json.Marshal(doc)
		keys, err := parseJWKS(b)
		require.NoError(t, err)
		require.Len(t, keys, 1)
		pub, ok := keys[0].Key.(*rsa.PublicKey)
		require.True(t, ok)
		require.Equal(t, 65537, pub.E)
		require.Zero(t, pub.N.Cmp(rk.N))
	})

	t.Run("kty desconocido se saltea", func(t *testing.T) {
		_, body := jwksFixture(t, "kid-1")
		var doc jwksDoc
		require.NoError(t, json.Unmarshal(body, &doc))
		doc.Keys = append(doc.Keys, jwk{KID: "ec-1", Kty: "EC"})
		b, _ := json.Marshal(doc)
		keys, err := parseJWKS(b)
		require.NoError(t, err)
		require.Len(t, keys, 1)
	})

	t.Run("no JSON", func(t *testing.T) {
		_, err := parseJWKS([]byte("<html>mantenimiento</html>"))
		require.Error(t, err)
	})

	t.Run("documento sin claves usables", func(t *testing.T) {
		_, err := parseJWKS([]byte(`{"keys":[]}`))
		require.Error(t, err)
	})
}

// jwksServer sirve un body fijo y cuenta requests; se puede apagar con fail.
type jwksServer struct {
	mu    sync.Mutex
	body  []byte
	fail  bool
	hits  atomic.Int64
	*httptest.Server
}

func newJWKSServer(t *testing.T, body []byte) *jwksServer {
	t.Helper()
	s := &jwksServer{body: body}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.mu.Lock()
		fail, b := s.fail, s.body
		s.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *jwksServer) setFail(v bool) {
	s.mu.Lock()
	s.fail = v
	s.mu.Unlock()
}

func TestKeySetCache_FreshHitSkipsNetwork(t *testing.T) {
	_, body := jwksFixture(t, "A")
	srv := newJWKSServer(t, body)

	c := NewKeySetCache(srv.URL, time.Hour, time.Second)

	keys, err := c.Keys(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 1)

	// segundo hit dentro del TTL: cero red
	_, err = c.Keys(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, srv.hits.Load())
}

func TestKeySetCache_ExpiryTriggersRefetch(t *testing.T) {
	_, body := jwksFixture(t, "A")
	srv := newJWKSServer(t, body)

	c := NewKeySetCache(srv.URL, time.Hour, time.Second)
	now := time.Now()
	c.Now = func() time.Time { return now }

	_, err := c.Keys(context.Background())
	require.NoError(t, err)

	// justo antes del TTL: sigue el cache
	now = now.Add(59 * time.Minute)
	_, err = c.Keys(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, srv.hits.Load())

	// pasado el TTL: refetch
	now = now.Add(2 * time.Minute)
	_, err = c.Keys(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, srv.hits.Load())
}

func TestKeySetCache_ServeStaleOnError(t *testing.T) {
	_, body := jwksFixture(t, "A")
	srv := newJWKSServer(t, body)

	c := NewKeySetCache(srv.URL, time.Hour, time.Second)
	now := time.Now()
	c.Now = func() time.Time { return now }

	keys, err := c.Keys(context.Background())
	require.NoError(t, err)

	// publisher caído + snapshot vencido → se sirve el viejo, sin error
	srv.setFail(true)
	now = now.Add(2 * time.Hour)

	stale, err := c.Keys(context.Background())
	require.NoError(t, err)
	require.Equal(t, keys, stale)

	// y cuando vuelve, se refresca normalmente
	srv.setFail(false)
	fresh, err := c.Keys(context.Background())
	require.NoError(t, err)
	require.Equal(t, keys, fresh)
}

func TestKeySetCache_NoSnapshotFailsClosed(t *testing.T) {
	_, body := jwksFixture(t, "A")
	srv := newJWKSServer(t, body)
	srv.setFail(true)

	c := NewKeySetCache(srv.URL, time.Hour, time.Second)

	_, err := c.Keys(context.Background())
	require.ErrorIs(t, err, ErrKeyFetch)
}

func TestKeySetCache_ConcurrentMissesCoalesce(t *testing.T) {
	_, body := jwksFixture(t, "A")
	srv := newJWKSServer(t, body)

	c := NewKeySetCache(srv.URL, time.Hour, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			keys, err := c.Keys(context.Background())
			if err != nil || len(keys) != 1 {
				t.Errorf("keys=%v err=%v", keys, err)
			}
		}()
	}
	wg.Wait()
	// singleflight: todos los misses comparten un solo fetch
	require.EqualValues(t, 1, srv.hits.Load())
}

func TestKeySetCache_ReplaceIsAtomic(t *testing.T) {
	_, body1 := jwksFixture(t, "A", "B")
	srv := newJWKSServer(t, body1)

	c := NewKeySetCache(srv.URL, time.Millisecond, time.Second)

	_, err := c.Keys(context.Background())
	require.NoError(t, err)

	_, body2 := jwksFixture(t, "C", "D")
	srv.mu.Lock()
	srv.body = body2
	srv.mu.Unlock()

	// lectores concurrentes mientras el set se reemplaza: siempre un set
	// completo, nunca mezcla de viejos y nuevos
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				keys, err := c.Keys(context.Background())
				if err != nil {
					t.Errorf("unexpected err: %v", err)
					return
				}
				if len(keys) != 2 {
					t.Errorf("torn snapshot: %d keys", len(keys))
					return
				}
				ab := keys[0].ID == "A" && keys[1].ID == "B"
				cd := keys[0].ID == "C" && keys[1].ID == "D"
				if !ab && !cd {
					t.Errorf("mixed snapshot: %s/%s", keys[0].ID, keys[1].ID)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestKeySetCache_TimeoutIsFetchFailure(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(slow.Close)

	c := NewKeySetCache(slow.URL, time.Hour, 20*time.Millisecond)

	_, err := c.Keys(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrKeyFetch))
}
