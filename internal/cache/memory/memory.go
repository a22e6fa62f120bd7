// Package memory adapta patrickmn/go-cache a la interfaz cache.Cache del
// servicio. Backend para dev y single-replica; en prod va redis.
package memory

import (
	"time"

	"github.com/dropDatabas3/sideline/internal/cache"
	gocache "github.com/patrickmn/go-cache"
)

type store struct{ inner *gocache.Cache }

// New crea el cache en memoria. El janitor corre cada defaultTTL (mínimo un
// minuto) para que las entradas vencidas no queden colgadas entre lecturas.
func New(defaultTTL time.Duration) cache.Cache {
	sweep := defaultTTL
	if sweep < time.Minute {
		sweep = time.Minute
	}
	return &store{inner: gocache.New(defaultTTL, sweep)}
}

func (s *store) Get(k string) ([]byte, bool) {
	v, ok := s.inner.Get(k)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	if !ok {
		// entrada de otro tipo: para el caller es un miss
		return nil, false
	}
	return b, true
}

func (s *store) Set(k string, v []byte, ttl time.Duration) { s.inner.Set(k, v, ttl) }

func (s *store) Delete(k string) { s.inner.Delete(k) }
