package leagues

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/sideline/internal/cache/memory"
	"github.com/dropDatabas3/sideline/internal/league"
	"github.com/dropDatabas3/sideline/internal/store/core"
)

// fakeRepo cuenta las lecturas contra la "base" para verificar el cache.
type fakeRepo struct {
	leagues         map[string]*core.League
	seq             int
	listActiveCalls int
	counts          map[string]core.LeagueCounts
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		leagues: make(map[string]*core.League),
		counts:  make(map[string]core.LeagueCounts),
	}
}

func (f *fakeRepo) Create(_ context.Context, l *core.League) error {
	f.seq++
	l.ID = fmt.Sprintf("league-%d", f.seq)
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	cp := *l
	f.leagues[l.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*core.League, error) {
	l, ok := f.leagues[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeRepo) List(_ context.Context) ([]core.League, error) {
	var out []core.League
	for _, l := range f.leagues {
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeRepo) ListActive(_ context.Context) ([]core.League, error) {
	f.listActiveCalls++
	var out []core.League
	for _, l := range f.leagues {
		if l.Active {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, l *core.League) error {
	if _, ok := f.leagues[l.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *l
	f.leagues[l.ID] = &cp
	return nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id string) (bool, error) {
	l, ok := f.leagues[id]
	if !ok {
		return false, nil
	}
	l.Active = false
	return true, nil
}

func (f *fakeRepo) Counts(_ context.Context, id string) (core.LeagueCounts, error) {
	return f.counts[id], nil
}

var _ core.LeagueRepository = (*fakeRepo)(nil)

func create(t *testing.T, svc *Service) *core.League {
	t.Helper()
	l, err := svc.Create(context.Background(), "admin@x.com", CreateInput{
		Name:             "Liga de Otoño",
		StartDate:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		NumWeeks:         8,
		PlayFormat:       "7v7",
		TournamentFormat: league.RoundRobin,
	})
	require.NoError(t, err)
	return l
}

func TestListActive_CachesBetweenCalls(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, memory.New(time.Minute))
	ctx := context.Background()

	create(t, svc)

	first, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, repo.listActiveCalls)

	// segunda lectura: sale del cache, la base no se toca
	second, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.listActiveCalls)
}

func TestListActive_WritesInvalidate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, memory.New(time.Minute))
	ctx := context.Background()

	l := create(t, svc)

	_, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.listActiveCalls)

	// el update invalida; la próxima lectura vuelve a la base
	name := "Liga de Invierno"
	_, err = svc.Update(ctx, l.ID, UpdateInput{Name: &name})
	require.NoError(t, err)

	out, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, repo.listActiveCalls)
	require.Equal(t, "Liga de Invierno", out[0].Name)

	// el delete también
	require.NoError(t, svc.Delete(ctx, l.ID))
	out, err = svc.ListActive(ctx)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestListActive_CorruptCacheEntryFallsThrough(t *testing.T) {
	repo := newFakeRepo()
	c := memory.New(time.Minute)
	svc := NewService(repo, c)
	ctx := context.Background()

	create(t, svc)
	c.Set(activeLeaguesKey, []byte("{not json"), time.Minute)

	out, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, 1, repo.listActiveCalls)
}

func TestCreate_RejectsBadPlayFormat(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.Create(context.Background(), "admin@x.com", CreateInput{
		Name:             "Liga",
		StartDate:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		NumWeeks:         8,
		PlayFormat:       "11v11",
		TournamentFormat: league.RoundRobin,
	})
	require.ErrorIs(t, err, ErrBadPlayFormat)
}

func TestUpdate_NonScheduleFieldKeepsEndDate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	l := create(t, svc)
	wantEnd := l.EndDate

	desc := "los lunes a la noche"
	got, err := svc.Update(ctx, l.ID, UpdateInput{Description: &desc})
	require.NoError(t, err)
	require.True(t, got.EndDate.Equal(wantEnd), "end_date must not move on a description patch")
}

func TestDelete_BlockedByRegisteredPlayers(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	l := create(t, svc)
	repo.counts[l.ID] = core.LeagueCounts{RegisteredPlayers: 12, RegisteredTeams: 2}

	err := svc.Delete(ctx, l.ID)
	require.ErrorIs(t, err, ErrHasRegistrations)

	// sigue activa
	got, err := svc.Get(ctx, l.ID)
	require.NoError(t, err)
	require.True(t, got.Active)
}
