package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/sideline/internal/authn"
	"github.com/dropDatabas3/sideline/internal/cache/memory"
	adminctrl "github.com/dropDatabas3/sideline/internal/http/controllers/admin"
	healthctrl "github.com/dropDatabas3/sideline/internal/http/controllers/health"
	publicctrl "github.com/dropDatabas3/sideline/internal/http/controllers/public"
	"github.com/dropDatabas3/sideline/internal/http/router"
	leaguessvc "github.com/dropDatabas3/sideline/internal/http/services/leagues"
	"github.com/dropDatabas3/sideline/internal/store/core"
)

// ---------- FAKES ----------

type memLeagues struct {
	seq     int
	byID    map[string]*core.League
	counts  map[string]core.LeagueCounts
	listErr error
}

func newMemLeagues() *memLeagues {
	return &memLeagues{
		byID:   map[string]*core.League{},
		counts: map[string]core.LeagueCounts{},
	}
}

func (m *memLeagues) Create(ctx context.Context, l *core.League) error {
	m.seq++
	l.ID = fmt.Sprintf("league-%d", m.seq)
	l.CreatedAt = time.Now().UTC()
	l.UpdatedAt = l.CreatedAt
	cp := *l
	m.byID[l.ID] = &cp
	return nil
}

func (m *memLeagues) GetByID(ctx context.Context, id string) (*core.League, error) {
	l, ok := m.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLeagues) List(ctx context.Context) ([]core.League, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []core.League
	for _, l := range m.byID {
		out = append(out, *l)
	}
	return out, nil
}

func (m *memLeagues) ListActive(ctx context.Context) ([]core.League, error) {
	var out []core.League
	for _, l := range m.byID {
		if l.Active {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memLeagues) Update(ctx context.Context, l *core.League) error {
	if _, ok := m.byID[l.ID]; !ok {
		return core.ErrNotFound
	}
	l.UpdatedAt = time.Now().UTC()
	cp := *l
	m.byID[l.ID] = &cp
	return nil
}

func (m *memLeagues) SoftDelete(ctx context.Context, id string) (bool, error) {
	l, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	l.Active = false
	return true, nil
}

func (m *memLeagues) Counts(ctx context.Context, id string) (core.LeagueCounts, error) {
	return m.counts[id], nil
}

var _ core.LeagueRepository = (*memLeagues)(nil)

type memAdmins struct {
	grants map[string]*core.AdminGrant
}

func (m *memAdmins) LookupActive(ctx context.Context, email string) (*core.AdminGrant, error) {
	if g, ok := m.grants[email]; ok && g.Active {
		return g, nil
	}
	return nil, core.ErrNotFound
}

func (m *memAdmins) Grant(ctx context.Context, email string, role core.AdminRole) (*core.AdminGrant, error) {
	g := &core.AdminGrant{ID: email, Email: email, Role: role, Active: true}
	m.grants[email] = g
	return g, nil
}

func (m *memAdmins) Revoke(ctx context.Context, email string) (bool, error) {
	g, ok := m.grants[email]
	if !ok {
		return false, nil
	}
	g.Active = false
	return true, nil
}

func (m *memAdmins) SetRole(ctx context.Context, email string, role core.AdminRole) (bool, error) {
	g, ok := m.grants[email]
	if !ok {
		return false, nil
	}
	g.Role = role
	return true, nil
}

func (m *memAdmins) ListActive(ctx context.Context) ([]core.AdminGrant, error) {
	var out []core.AdminGrant
	for _, g := range m.grants {
		if g.Active {
			out = append(out, *g)
		}
	}
	return out, nil
}

var _ core.AdminRepository = (*memAdmins)(nil)

// tokenVerifier acepta tokens con forma "ok:<email>"; el resto falla.
type tokenVerifier struct{}

func (tokenVerifier) Verify(ctx context.Context, token string) (*authn.ClaimSet, error) {
	const p = "ok:"
	if len(token) > len(p) && token[:len(p)] == p {
		return &authn.ClaimSet{Subject: "user_1", Emails: []string{token[len(p):]}}, nil
	}
	return nil, authn.ErrSignatureInvalid
}

// ---------- SETUP ----------

type env struct {
	h       http.Handler
	leagues *memLeagues
	admins  *memAdmins
}

func newEnv(t *testing.T) *env {
	t.Helper()

	leagues := newMemLeagues()
	admins := &memAdmins{grants: map[string]*core.AdminGrant{
		"admin@x.com": {Email: "admin@x.com", Role: core.RoleAdmin, Active: true},
	}}

	svc := leaguessvc.NewService(leagues, memory.New(time.Minute))
	gate := authn.NewGate(tokenVerifier{}, admins)

	h := router.New(router.Deps{
		Gate:   gate,
		Admin:  adminctrl.NewControllers(svc, admins),
		Public: publicctrl.NewLeaguesController(svc),
		Health: healthctrl.NewHealthController(nil, nil),
	})
	return &env{h: h, leagues: leagues, admins: admins}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func createBody() map[string]any {
	return map[string]any{
		"name":              "Liga de Primavera",
		"start_date":        "2026-03-02",
		"num_weeks":         8,
		"play_format":       "7v7",
		"tournament_format": "round_robin",
		"game_duration":     50,
		"games_per_week":    1,
		"min_teams":         4,
	}
}

// ---------- TESTS ----------

func TestAdminRoutes_RequireAuth(t *testing.T) {
	e := newEnv(t)

	// sin token
	rec := e.do(t, http.MethodGet, "/api/admin/leagues", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// token inválido
	rec = e.do(t, http.MethodGet, "/api/admin/leagues", "basura", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// identidad válida sin grant
	rec = e.do(t, http.MethodGet, "/api/admin/leagues", "ok:nadie@x.com", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// con grant
	rec = e.do(t, http.MethodGet, "/api/admin/leagues", "ok:admin@x.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateLeague_DerivesEndDate(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/admin/leagues", "ok:admin@x.com", createBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "2026-03-02", resp["start_date"])
	// 8 semanas: la última arranca 7 semanas después del start
	require.Equal(t, "2026-04-20", resp["end_date"])
	require.Equal(t, "admin@x.com", resp["created_by"])
	require.Equal(t, true, resp["is_active"])
}

func TestCreateLeague_FormatValidation(t *testing.T) {
	e := newEnv(t)

	// playoff bracket con 6+3 != 8 → 400 con mensaje específico
	body := createBody()
	body["tournament_format"] = "playoff_bracket"
	body["regular_season_weeks"] = 6
	body["playoff_weeks"] = 3

	rec := e.do(t, http.MethodPost, "/api/admin/leagues", "ok:admin@x.com", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "must equal num_weeks")

	// con num_weeks=9 la misma config pasa y end = start + 8 semanas
	body["num_weeks"] = 9
	rec = e.do(t, http.MethodPost, "/api/admin/leagues", "ok:admin@x.com", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "2026-04-27", resp["end_date"])
}

func TestUpdateLeague_RecomputesEndDate(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/admin/leagues", "ok:admin@x.com", createBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created["id"].(string)

	// el patch solo manda num_weeks; el merge con el estado actual recalcula
	rec = e.do(t, http.MethodPatch, "/api/admin/leagues/"+id, "ok:admin@x.com",
		map[string]any{"num_weeks": 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "2026-05-04", updated["end_date"])
}

func TestUpdateLeague_RejectsInconsistentMerge(t *testing.T) {
	e := newEnv(t)

	body := createBody()
	body["num_weeks"] = 9
	body["tournament_format"] = "playoff_bracket"
	body["regular_season_weeks"] = 6
	body["playoff_weeks"] = 3
	rec := e.do(t, http.MethodPost, "/api/admin/leagues", "ok:admin@x.com", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created["id"].(string)

	// bajar num_weeks sin tocar los parciales rompe la suma → 400
	rec = e.do(t, http.MethodPatch, "/api/admin/leagues/"+id, "ok:admin@x.com",
		map[string]any{"num_weeks": 8})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "must equal num_weeks")
}

func TestDeleteLeague_BlockedWithRegistrations(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/admin/leagues", "ok:admin@x.com", createBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created["id"].(string)

	e.leagues.counts[id] = core.LeagueCounts{RegisteredPlayers: 12, RegisteredTeams: 2}

	rec = e.do(t, http.MethodDelete, "/api/admin/leagues/"+id, "ok:admin@x.com", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "registered players")

	// sin inscriptos sí se puede
	e.leagues.counts[id] = core.LeagueCounts{}
	rec = e.do(t, http.MethodDelete, "/api/admin/leagues/"+id, "ok:admin@x.com", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// y desaparece de la vista pública
	rec = e.do(t, http.MethodGet, "/api/leagues/"+id, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicRoutes_NoAuthNeeded(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/admin/leagues", "ok:admin@x.com", createBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created["id"].(string)

	rec = e.do(t, http.MethodGet, "/api/leagues", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = e.do(t, http.MethodGet, "/api/leagues/"+id+"/schedule", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"games":[]`)

	rec = e.do(t, http.MethodGet, "/api/leagues/"+id+"/standings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminGrantLifecycle(t *testing.T) {
	e := newEnv(t)

	// grant nuevo
	rec := e.do(t, http.MethodPost, "/api/admin/admins", "ok:admin@x.com",
		map[string]any{"email": "Nueva@X.com", "role": "super_admin"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"email":"nueva@x.com"`)

	// la nueva admin ya puede entrar
	rec = e.do(t, http.MethodGet, "/api/admin/leagues", "ok:nueva@x.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// cambio de rol
	rec = e.do(t, http.MethodPatch, "/api/admin/admins/nueva@x.com/role", "ok:admin@x.com",
		map[string]any{"role": "admin"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	// revoke → el próximo request de la revocada es 403
	rec = e.do(t, http.MethodDelete, "/api/admin/admins/nueva@x.com", "ok:admin@x.com", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/admin/leagues", "ok:nueva@x.com", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// rol inválido → 400
	rec = e.do(t, http.MethodPost, "/api/admin/admins", "ok:admin@x.com",
		map[string]any{"email": "otra@x.com", "role": "root"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ready")
}
