package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "github.com/TheInsomnolent/slayer-boosting/adapters/memory"
	"github.com/TheInsomnolent/slayer-boosting/core"
	"github.com/TheInsomnolent/slayer-boosting/display"
	"github.com/TheInsomnolent/slayer-boosting/engine"
)

func newTestService() *engine.BoostService {
	return engine.NewBoostService(mem.New(), engine.NewEventBus(engine.DispatchSync), nil, core.DefaultSettings())
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestSessionLifecycle(t *testing.T) {
	h := NewMux(newTestService(), nil, Options{PathPrefix: "/api"})

	rec := do(t, h, http.MethodPost, "/api/players/Zezima/session", `{"streak":49,"points":300,"task_remaining":0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode[engine.Snapshot](t, rec)
	assert.Equal(t, core.PlayerID("zezima"), snap.Player)
	assert.True(t, snap.Evaluation.Milestone)
	assert.Equal(t, core.MasterKonar, snap.Evaluation.NextMaster)
	assert.Equal(t, 270, snap.Evaluation.NextTaskPoints)

	rec = do(t, h, http.MethodPost, "/api/players/zezima/counters", `{"streak":50,"points":570}`)
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decode[engine.Snapshot](t, rec)
	assert.False(t, snap.Evaluation.Milestone)
	assert.Equal(t, core.MasterTurael, snap.Evaluation.NextMaster)

	rec = do(t, h, http.MethodGet, "/api/players/zezima", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 570, decode[engine.Snapshot](t, rec).Counters.Points)

	rec = do(t, h, http.MethodDelete, "/api/players/zezima/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decode[engine.Snapshot](t, rec)
	assert.False(t, snap.Active)
	assert.Equal(t, core.MasterNone, snap.Evaluation.NextMaster)
}

func TestPanel(t *testing.T) {
	h := NewMux(newTestService(), nil, Options{PathPrefix: "/api"})

	rec := do(t, h, http.MethodGet, "/api/players/zezima/panel", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	do(t, h, http.MethodPost, "/api/players/zezima/session", `{"streak":9,"points":20}`)
	rec = do(t, h, http.MethodGet, "/api/players/zezima/panel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[display.Panel](t, rec)
	assert.Equal(t, "Slayer Boosting", p.Title)
	require.Len(t, p.Lines, 5)
	assert.Equal(t, "#10 (10th bonus!)", p.Lines[0].Right)
	assert.Equal(t, "Duradel / Kuradel", p.Lines[1].Right)
	assert.Equal(t, display.MilestoneColor, p.Lines[0].Color)
}

func TestCountersValidation(t *testing.T) {
	h := NewMux(newTestService(), nil, Options{PathPrefix: "/api"})

	rec := do(t, h, http.MethodPost, "/api/players/zezima/counters", `{"streak":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_counters", decode[apiError](t, rec).Code)

	rec = do(t, h, http.MethodPost, "/api/players/zezima/session", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_body", decode[apiError](t, rec).Code)

	rec = do(t, h, http.MethodPost, "/api/players/zezima/session", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/players/%20/settings", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_player", decode[apiError](t, rec).Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	h := NewMux(newTestService(), nil, Options{PathPrefix: "/api"})

	rec := do(t, h, http.MethodGet, "/api/players/zezima/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.DefaultSettings(), decode[core.Settings](t, rec))

	s := core.DefaultSettings()
	s.DefaultMaster = core.MasterNieve
	s.Diaries.EliteWestern = true
	body, err := json.Marshal(s)
	require.NoError(t, err)

	rec = do(t, h, http.MethodPut, "/api/players/zezima/settings", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/players/zezima/settings", "")
	assert.Equal(t, s, decode[core.Settings](t, rec))

	rec = do(t, h, http.MethodGet, "/api/players", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"players":["zezima"]}`, rec.Body.String())
}

func TestSettingsRejectsUnknownMaster(t *testing.T) {
	h := NewMux(newTestService(), nil, Options{PathPrefix: "/api"})

	rec := do(t, h, http.MethodPut, "/api/players/zezima/settings", `{"default_master":"krystilia"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_settings", decode[apiError](t, rec).Code)

	rec = do(t, h, http.MethodPut, "/api/players/zezima/settings", `{"default_master":"turael","correct_color":"#XYZ"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_settings", decode[apiError](t, rec).Code)
}

func TestHighlight(t *testing.T) {
	h := NewMux(newTestService(), nil, Options{PathPrefix: "/api"})
	do(t, h, http.MethodPost, "/api/players/zezima/session", `{"streak":9}`)

	rec := do(t, h, http.MethodGet, "/api/players/zezima/highlight?npc=Kuradal", "")
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[core.HighlightDecision](t, rec)
	assert.Equal(t, core.HighlightCorrect, d.Kind)
	assert.Equal(t, core.MasterDuradel, d.Master)

	rec = do(t, h, http.MethodGet, "/api/players/zezima/highlight?npc=Turael", "")
	assert.Equal(t, core.HighlightWrong, decode[core.HighlightDecision](t, rec).Kind)

	rec = do(t, h, http.MethodGet, "/api/players/zezima/highlight", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMasters(t *testing.T) {
	h := NewMux(newTestService(), nil, Options{PathPrefix: "/api"})
	rec := do(t, h, http.MethodGet, "/api/masters", "")
	require.Equal(t, http.StatusOK, rec.Code)

	masters := decode[[]MasterInfo](t, rec)
	require.Len(t, masters, len(core.AllMasters()))
	konar := masters[len(masters)-1]
	assert.Equal(t, core.MasterKonar, konar.ID)
	assert.Equal(t, 18, konar.Points["base"])
	assert.Equal(t, 900, konar.Points["1,000th"])
}

func TestHealthz(t *testing.T) {
	h := NewMux(newTestService(), nil, Options{PathPrefix: "/api"})
	rec := do(t, h, http.MethodGet, "/api/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	broken := engine.NewBoostService(brokenStore{}, engine.NewEventBus(engine.DispatchSync), nil, core.DefaultSettings())
	h = NewMux(broken, nil, Options{})
	rec = do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unhealthy"`)

	rec = do(t, h, http.MethodGet, "/players/zezima", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decode[apiError](t, rec).Code)
}

func TestUnknownRoute(t *testing.T) {
	h := NewMux(newTestService(), nil, Options{PathPrefix: "/api"})
	rec := do(t, h, http.MethodGet, "/api/users/alice", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[apiError](t, rec).Code)
}

func TestAPIKeyAuth(t *testing.T) {
	handler := NewMux(newTestService(), nil, Options{
		PathPrefix:      "/api",
		APIKeys:         []string{"secret"},
		AllowCORSOrigin: "*",
	})

	rec := do(t, handler, http.MethodGet, "/api/players/alice", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/players/alice", nil)
	req2.Header.Set("Authorization", "Bearer secret")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec2.Code)
	}

	// preflight does not need a key
	rec3 := do(t, handler, http.MethodOptions, "/api/players/alice", "")
	if rec3.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec3.Code)
	}
	if rec3.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}

func TestRateLimit(t *testing.T) {
	handler := NewMux(newTestService(), nil, Options{
		PathPrefix:       "/api",
		APIKeys:          []string{"k"},
		RateLimitEnabled: true,
		RateLimitRPM:     1,
		RateLimitBurst:   1,
	})

	req1 := httptest.NewRequest(http.MethodGet, "/api/players/alice", nil)
	req1.Header.Set("X-API-Key", "k")
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected 200 first request, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/players/alice", nil)
	req2.Header.Set("X-API-Key", "k")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec2.Code)
	}
}

func TestRateLimiterRefills(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newRateLimiter(60, 2, time.Minute)
	l.now = func() time.Time { return clock }

	assert.True(t, l.allow("a"))
	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))
	assert.True(t, l.allow("b"), "buckets are per key")

	clock = clock.Add(time.Second)
	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))
}

func TestRateLimiterDropsIdleBuckets(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newRateLimiter(60, 2, time.Minute)
	l.now = func() time.Time { return clock }

	for i := 0; i < 500; i++ {
		assert.True(t, l.allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256)))
	}
	assert.True(t, l.allow("busy"))
	assert.True(t, l.allow("busy"))
	assert.Len(t, l.b, 501)

	// a minute later the idle buckets are full again while "busy" is drained
	clock = clock.Add(time.Minute)
	l.b["busy"].tokens = 0
	l.b["busy"].last = clock
	assert.False(t, l.allow("busy"))
	assert.Len(t, l.b, 1)
	assert.Contains(t, l.b, "busy")

	// a dropped key starts again from a full bucket
	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
}

type brokenStore struct{}

func (brokenStore) LoadSettings(context.Context, core.PlayerID) (core.Settings, error) {
	return core.Settings{}, errors.New("connection refused")
}

func (brokenStore) SaveSettings(context.Context, core.PlayerID, core.Settings) error {
	return errors.New("connection refused")
}

func (brokenStore) ListPlayers(context.Context) ([]core.PlayerID, error) {
	return nil, errors.New("connection refused")
}
