package engine

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/screencoach/internal/domain"
)

// dailySuccessLimitSeconds is the per-app daily ceiling a day must stay under
// to count towards the streak.
const dailySuccessLimitSeconds = 3600

// StreakEvaluator derives the current streak from stored daily records. Pure
// read path, recomputed on demand, never cached.
type StreakEvaluator struct {
	ledger domain.Ledger
	clock  clockwork.Clock
}

func NewStreakEvaluator(ledger domain.Ledger, clock clockwork.Clock) *StreakEvaluator {
	return &StreakEvaluator{ledger: ledger, clock: clock}
}

// DailySuccess reports whether the date counts towards the streak: a usage
// record exists and no single app exceeded one hour. A day with no record is
// not a success, it is an unknown.
func (e *StreakEvaluator) DailySuccess(ctx context.Context, date string) (bool, error) {
	record, err := e.ledger.GetDailyUsage(ctx, date)
	if err != nil {
		return false, fmt.Errorf("load usage for %s: %w", date, err)
	}
	if record == nil {
		return false, nil
	}
	for _, seconds := range record.PerApp {
		if seconds > dailySuccessLimitSeconds {
			return false, nil
		}
	}
	return true, nil
}

// CurrentStreak walks backwards from today counting consecutive successful
// days. The walk stops at the first missing record or failed day; pruned
// history naturally bounds it.
func (e *StreakEvaluator) CurrentStreak(ctx context.Context) (int, error) {
	day := domain.Midnight(e.clock.Now())

	streak := 0
	for {
		ok, err := e.DailySuccess(ctx, domain.LocalDate(day))
		if err != nil {
			return 0, err
		}
		if !ok {
			return streak, nil
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}
