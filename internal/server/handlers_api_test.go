package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/screencoach/internal/app"
	"github.com/pscheid92/screencoach/internal/config"
	"github.com/pscheid92/screencoach/internal/domain"
	"github.com/pscheid92/screencoach/internal/engine"
	"github.com/pscheid92/screencoach/internal/redis"
	ws "github.com/pscheid92/screencoach/internal/websocket"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	stats map[string]domain.UsageStats
}

func (s *stubSource) Available() bool { return true }

func (s *stubSource) HasPermission() bool { return true }

func (s *stubSource) RequestPermission() {}

func (s *stubSource) QueryUsage(_ context.Context, packages []string, _ int64) map[string]domain.UsageStats {
	out := make(map[string]domain.UsageStats)
	for _, pkg := range packages {
		if stat, ok := s.stats[pkg]; ok {
			out[pkg] = stat
		}
	}
	return out
}

type noopNotifier struct{}

func (noopNotifier) Send(title, body, tag string) {}

type serverFixture struct {
	srv       *Server
	source    *stubSource
	scheduler *engine.BreakScheduler
	ledger    *redis.Ledger
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ledger := redis.NewLedger(client, clock)
	require.NoError(t, ledger.Init(context.Background()))

	source := &stubSource{stats: make(map[string]domain.UsageStats)}

	acc := engine.NewAccumulator()
	var scheduler *engine.BreakScheduler
	timers := engine.NewTimerManager(clock, func(packageName string) {
		scheduler.TriggerBreak(packageName, domain.BreakOriginTimer)
	})
	t.Cleanup(timers.Shutdown)
	scheduler = engine.NewBreakScheduler(ledger, noopNotifier{}, clock, timers, acc)
	streaks := engine.NewStreakEvaluator(ledger, clock)
	syncer := engine.NewSyncer(ledger, source, noopNotifier{}, clock, engine.NewReconciler(), acc, scheduler)

	service := app.NewService(ledger, source, clock, timers, scheduler, streaks, syncer)
	broadcaster := ws.NewStatusBroadcaster(service, clock)
	t.Cleanup(broadcaster.Stop)

	cfg := &config.Config{AppEnv: "test", Port: "8080"}
	srv := NewServer(cfg, service, broadcaster, client, clock)

	return &serverFixture{srv: srv, source: source, scheduler: scheduler, ledger: ledger}
}

func (f *serverFixture) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		doc, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(doc)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.srv.echo.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// --- Tracked apps ---

func TestHandleAddApp(t *testing.T) {
	f := newServerFixture(t)
	f.source.stats["com.example.game"] = domain.UsageStats{
		PackageName:      "com.example.game",
		ForegroundMillis: 500_000,
	}

	rec := f.request(t, http.MethodPost, "/api/apps", map[string]any{
		"name":             "Example Game",
		"packageName":      "com.example.game",
		"timeLimitMinutes": 45,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeJSON[domain.TrackedApp](t, rec)
	assert.Equal(t, "com.example.game", created.PackageName)
	assert.Equal(t, 45, created.TimeLimitMinutes)
	assert.Equal(t, int64(500), created.UsageOffsetSeconds, "usage already on the device becomes a baseline")
	assert.Equal(t, "2026-08-30", created.UsageOffsetDate)

	rec = f.request(t, http.MethodGet, "/api/apps", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON[[]domain.TrackedApp](t, rec), 1)
}

func TestHandleAddApp_Validation(t *testing.T) {
	f := newServerFixture(t)

	rec := f.request(t, http.MethodPost, "/api/apps", map[string]any{
		"name":             "",
		"packageName":      "com.example.game",
		"timeLimitMinutes": 45,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/apps", map[string]any{
		"name":             "Example",
		"packageName":      "com.example.game",
		"timeLimitMinutes": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAddApp_DuplicateConflicts(t *testing.T) {
	f := newServerFixture(t)

	body := map[string]any{"name": "Example", "packageName": "com.example.game", "timeLimitMinutes": 30}
	require.Equal(t, http.StatusCreated, f.request(t, http.MethodPost, "/api/apps", body).Code)
	assert.Equal(t, http.StatusConflict, f.request(t, http.MethodPost, "/api/apps", body).Code)
}

func TestHandleUpdateAndRemoveApp(t *testing.T) {
	f := newServerFixture(t)

	body := map[string]any{"name": "Example", "packageName": "com.example.game", "timeLimitMinutes": 30}
	require.Equal(t, http.StatusCreated, f.request(t, http.MethodPost, "/api/apps", body).Code)

	rec := f.request(t, http.MethodPatch, "/api/apps/com.example.game", map[string]any{"timeLimitMinutes": 20})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, decodeJSON[domain.TrackedApp](t, rec).TimeLimitMinutes)

	assert.Equal(t, http.StatusNotFound,
		f.request(t, http.MethodPatch, "/api/apps/com.example.unknown", map[string]any{"timeLimitMinutes": 20}).Code)

	assert.Equal(t, http.StatusNoContent, f.request(t, http.MethodDelete, "/api/apps/com.example.game", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.request(t, http.MethodDelete, "/api/apps/com.example.game", nil).Code)
}

// --- Usage, streak ---

func TestHandleUsage(t *testing.T) {
	f := newServerFixture(t)

	rec := f.request(t, http.MethodGet, "/api/usage/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	record := decodeJSON[domain.DailyUsageRecord](t, rec)
	assert.Equal(t, "2026-08-30", record.Date)
	assert.Zero(t, record.TotalSeconds)

	assert.Equal(t, http.StatusBadRequest, f.request(t, http.MethodGet, "/api/usage/not-a-date", nil).Code)

	require.NoError(t, f.ledger.SaveDailyUsage(context.Background(), domain.DailyUsageRecord{
		Date:         "2026-08-29",
		TotalSeconds: 600,
		PerApp:       map[string]int64{"com.example.game": 600},
	}))
	rec = f.request(t, http.MethodGet, "/api/usage/2026-08-29", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(600), decodeJSON[domain.DailyUsageRecord](t, rec).TotalSeconds)
}

func TestHandleStreak(t *testing.T) {
	f := newServerFixture(t)

	rec := f.request(t, http.MethodGet, "/api/streak", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decodeJSON[map[string]int](t, rec)["streak"])
}

// --- Settings ---

func TestHandleSettings(t *testing.T) {
	f := newServerFixture(t)

	rec := f.request(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.DefaultSettings(), decodeJSON[domain.Settings](t, rec))

	updated := domain.Settings{DailyGoalMinutes: 90, BreakFrequencyMinutes: 20, DailyBreakGoal: 4, Theme: "dark"}
	require.Equal(t, http.StatusOK, f.request(t, http.MethodPut, "/api/settings", updated).Code)

	rec = f.request(t, http.MethodGet, "/api/settings", nil)
	assert.Equal(t, updated, decodeJSON[domain.Settings](t, rec))

	invalid := domain.Settings{DailyGoalMinutes: 0, BreakFrequencyMinutes: 20}
	assert.Equal(t, http.StatusBadRequest, f.request(t, http.MethodPut, "/api/settings", invalid).Code)
}

// --- Timers ---

func TestHandleTimers(t *testing.T) {
	f := newServerFixture(t)

	assert.Equal(t, http.StatusNotFound, f.request(t, http.MethodPost, "/api/timers/com.example.game/start", nil).Code)

	body := map[string]any{"name": "Example", "packageName": "com.example.game", "timeLimitMinutes": 30}
	require.Equal(t, http.StatusCreated, f.request(t, http.MethodPost, "/api/apps", body).Code)

	rec := f.request(t, http.MethodPost, "/api/timers/com.example.game/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeJSON[domain.TimerSnapshot](t, rec)
	assert.Equal(t, int64(30*60), snap.TotalSeconds)
	assert.True(t, snap.Running)

	// A second start returns the same session instead of restarting.
	rec = f.request(t, http.MethodPost, "/api/timers/com.example.game/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, snap.SessionID, decodeJSON[domain.TimerSnapshot](t, rec).SessionID)

	require.Equal(t, http.StatusOK, f.request(t, http.MethodPost, "/api/timers/com.example.game/pause", nil).Code)
	require.Equal(t, http.StatusOK, f.request(t, http.MethodPost, "/api/timers/com.example.game/resume", nil).Code)
	require.Equal(t, http.StatusOK, f.request(t, http.MethodPost, "/api/timers/com.example.game/stop", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.request(t, http.MethodPost, "/api/timers/com.example.game/stop", nil).Code)

	rec = f.request(t, http.MethodGet, "/api/timers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON[[]domain.TimerSnapshot](t, rec))
}

// --- Breaks and visibility ---

func TestHandleBreakLifecycle(t *testing.T) {
	f := newServerFixture(t)

	assert.Equal(t, http.StatusConflict, f.request(t, http.MethodPost, "/api/break/complete", nil).Code)

	f.scheduler.TriggerBreak("com.example.game", domain.BreakOriginTimer)

	rec := f.request(t, http.MethodGet, "/api/break", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decodeJSON[map[string]*domain.PendingBreak](t, rec)["pendingBreak"]
	require.NotNil(t, pending)
	assert.Equal(t, "com.example.game", pending.PackageName)

	rec = f.request(t, http.MethodPost, "/api/break/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	completed := decodeJSON[domain.BreakRecord](t, rec)
	assert.NotEmpty(t, completed.ID)

	rec = f.request(t, http.MethodGet, "/api/breaks/2026-08-30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON[[]domain.BreakRecord](t, rec), 1)
}

func TestHandleBreakActivities(t *testing.T) {
	f := newServerFixture(t)

	rec := f.request(t, http.MethodGet, "/api/break/activities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON[[]domain.BreakActivity](t, rec), 10)
}

func TestHandleVisibility(t *testing.T) {
	f := newServerFixture(t)

	rec := f.request(t, http.MethodPost, "/api/visibility", map[string]any{"foreground": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeJSON[map[string]bool](t, rec)["foreground"])
}

// --- Health ---

func TestHandleHealth(t *testing.T) {
	f := newServerFixture(t)

	assert.Equal(t, http.StatusOK, f.request(t, http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, f.request(t, http.MethodGet, "/health/ready", nil).Code)
}
