package engine

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/screencoach/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveUsage(t *testing.T, ledger domain.Ledger, date string, perApp map[string]int64) {
	t.Helper()

	var total int64
	for _, seconds := range perApp {
		total += seconds
	}
	require.NoError(t, ledger.SaveDailyUsage(context.Background(), domain.DailyUsageRecord{
		Date:         date,
		TotalSeconds: total,
		PerApp:       perApp,
	}))
}

func TestDailySuccess(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	ledger := newTestLedger(t, clock)
	eval := NewStreakEvaluator(ledger, clock)
	ctx := context.Background()

	// No record: unknown, not a success.
	ok, err := eval.DailySuccess(ctx, "2026-08-29")
	require.NoError(t, err)
	assert.False(t, ok)

	saveUsage(t, ledger, "2026-08-29", map[string]int64{
		"com.example.game":  3600,
		"com.example.other": 200,
	})
	ok, err = eval.DailySuccess(ctx, "2026-08-29")
	require.NoError(t, err)
	assert.True(t, ok, "exactly one hour still counts")

	saveUsage(t, ledger, "2026-08-28", map[string]int64{"com.example.game": 3601})
	ok, err = eval.DailySuccess(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCurrentStreak_CountsBackwardsFromToday(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	ledger := newTestLedger(t, clock)
	eval := NewStreakEvaluator(ledger, clock)
	ctx := context.Background()

	streak, err := eval.CurrentStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, streak, "empty history means no streak")

	saveUsage(t, ledger, "2026-08-30", map[string]int64{"com.example.game": 1200})
	saveUsage(t, ledger, "2026-08-29", map[string]int64{"com.example.game": 2400})
	saveUsage(t, ledger, "2026-08-28", map[string]int64{"com.example.game": 3000})
	// 2026-08-27 missing: the walk stops there.

	streak, err = eval.CurrentStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}

func TestCurrentStreak_FailedDayBreaksTheChain(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	ledger := newTestLedger(t, clock)
	eval := NewStreakEvaluator(ledger, clock)
	ctx := context.Background()

	saveUsage(t, ledger, "2026-08-30", map[string]int64{"com.example.game": 1200})
	saveUsage(t, ledger, "2026-08-29", map[string]int64{"com.example.game": 5000})
	saveUsage(t, ledger, "2026-08-28", map[string]int64{"com.example.game": 1200})

	streak, err := eval.CurrentStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}
