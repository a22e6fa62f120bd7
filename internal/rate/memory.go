package rate

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter: misma semántica fixed-window que RedisLimiter pero en
// proceso. Sirve para dev y para despliegues de una sola réplica.
//
// Redis limpia las ventanas viejas solo con EXPIRE; acá el barrido corre
// dentro de Allow, a lo sumo una vez por ventana, para que el mapa no crezca
// con cada IP que pasó alguna vez.
type MemoryLimiter struct {
	max    int64
	window time.Duration

	mu        sync.Mutex
	hits      map[string]int64
	started   map[string]time.Time
	lastSweep time.Time

	now func() time.Time // inyectable en tests
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:     int64(max),
		window:  window,
		hits:    make(map[string]int64),
		started: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(winStart)

	if st, ok := l.started[key]; !ok || !st.Equal(winStart) {
		// ventana nueva: resetear el contador
		l.started[key] = winStart
		l.hits[key] = 0
	}
	l.hits[key]++
	hits := l.hits[key]

	remaining := l.max - hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     hits <= l.max,
		Remaining:   remaining,
		CurrentHits: hits,
	}
	if !res.Allowed {
		res.RetryAfter = winStart.Add(l.window).Sub(now)
	}
	return res, nil
}

// sweep borra las entradas de ventanas ya cerradas. Corre con el lock tomado
// y a lo sumo una vez por ventana: el costo O(claves) se amortiza.
func (l *MemoryLimiter) sweep(winStart time.Time) {
	if l.lastSweep.Equal(winStart) {
		return
	}
	l.lastSweep = winStart
	for k, st := range l.started {
		if st.Before(winStart) {
			delete(l.started, k)
			delete(l.hits, k)
		}
	}
}
