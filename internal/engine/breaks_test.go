package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/screencoach/internal/domain"
	"github.com/pscheid92/screencoach/internal/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentNotification struct {
	Title string
	Body  string
	Tag   string
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (m *mockNotifier) Send(title, body, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentNotification{Title: title, Body: body, Tag: tag})
}

func (m *mockNotifier) getSent() []sentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentNotification, len(m.sent))
	copy(out, m.sent)
	return out
}

func newTestLedger(t *testing.T, clock clockwork.Clock) *redis.Ledger {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ledger := redis.NewLedger(client, clock)
	require.NoError(t, ledger.Init(context.Background()))
	return ledger
}

func newTestScheduler(t *testing.T, clock clockwork.Clock) (*BreakScheduler, *mockNotifier, *TimerManager, *Accumulator, *redis.Ledger) {
	t.Helper()

	ledger := newTestLedger(t, clock)
	notifier := &mockNotifier{}
	acc := NewAccumulator()
	timers := NewTimerManager(clock, nil)
	t.Cleanup(timers.Shutdown)

	scheduler := NewBreakScheduler(ledger, notifier, clock, timers, acc)
	scheduler.pick = func(int) int { return 0 }
	return scheduler, notifier, timers, acc, ledger
}

func TestTriggerBreak_SetsPendingAndNotifies(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	scheduler, notifier, _, _, _ := newTestScheduler(t, clock)

	scheduler.TriggerBreak("com.example.game", domain.BreakOriginTimer)

	pending := scheduler.Pending()
	require.NotNil(t, pending)
	assert.Equal(t, "com.example.game", pending.PackageName)
	assert.Equal(t, domain.BreakOriginTimer, pending.Origin)
	assert.Equal(t, breakActivities[0].ID, pending.Activity.ID)

	sent := notifier.getSent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Break Time!", sent[0].Title)
	assert.Equal(t, "break-time", sent[0].Tag)
}

func TestTriggerBreak_ResetsAccumulatorAndEndsTimer(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	scheduler, _, timers, acc, _ := newTestScheduler(t, clock)

	acc.Add("com.example.game", 600, testThreshold)
	timers.Start(testApp(30))

	scheduler.TriggerBreak("com.example.game", domain.BreakOriginContinuousUse)

	assert.Equal(t, int64(0), acc.Continuous("com.example.game"))
	assert.Empty(t, timers.Snapshots())
}

func TestTriggerBreak_DoesNotStackASecondOverlay(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	scheduler, notifier, _, _, _ := newTestScheduler(t, clock)

	scheduler.TriggerBreak("com.example.game", domain.BreakOriginTimer)
	scheduler.TriggerBreak("com.example.other", domain.BreakOriginContinuousUse)

	pending := scheduler.Pending()
	require.NotNil(t, pending)
	assert.Equal(t, "com.example.game", pending.PackageName)
	assert.Len(t, notifier.getSent(), 1)
}

func TestCompleteBreak_PersistsRecordAndClearsPending(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	scheduler, _, _, _, ledger := newTestScheduler(t, clock)
	ctx := context.Background()

	scheduler.TriggerBreak("com.example.game", domain.BreakOriginTimer)
	activity := scheduler.Pending().Activity

	rec, err := scheduler.CompleteBreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(activity.DurationMinutes)*60, rec.DurationSeconds)
	assert.Equal(t, activity.Type, rec.ActivityType)
	assert.Nil(t, scheduler.Pending())

	stored, err := ledger.ListBreaks(ctx, "2026-08-30")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, rec.ID, stored[0].ID)
}

func TestCompleteBreak_WithoutPendingFails(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	scheduler, _, _, _, _ := newTestScheduler(t, clock)

	_, err := scheduler.CompleteBreak(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoPendingBreak)
}

func TestBreakScheduler_OnChangeFiresOnBothFlips(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	scheduler, _, _, _, _ := newTestScheduler(t, clock)

	var mu sync.Mutex
	flips := 0
	scheduler.SetOnChange(func() {
		mu.Lock()
		defer mu.Unlock()
		flips++
	})

	scheduler.TriggerBreak("com.example.game", domain.BreakOriginTimer)
	_, err := scheduler.CompleteBreak(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, flips)
}
