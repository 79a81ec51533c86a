package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/screencoach/internal/domain"
	"github.com/pscheid92/screencoach/internal/metrics"
)

// BreakScheduler owns the single pending-break slot. Breaks are triggered by
// timer expiry or by the continuous-use accumulator; only the user completing
// the break clears the slot and writes the durable record.
type BreakScheduler struct {
	ledger   domain.Ledger
	notifier domain.Notifier
	clock    clockwork.Clock
	timers   *TimerManager
	acc      *Accumulator

	mu      sync.Mutex
	pending *domain.PendingBreak

	// pick selects a catalog index; swapped out in tests.
	pick func(n int) int

	onChange func()
}

func NewBreakScheduler(ledger domain.Ledger, notifier domain.Notifier, clock clockwork.Clock, timers *TimerManager, acc *Accumulator) *BreakScheduler {
	return &BreakScheduler{
		ledger:   ledger,
		notifier: notifier,
		clock:    clock,
		timers:   timers,
		acc:      acc,
		pick:     rand.Intn,
	}
}

// SetOnChange registers a hook invoked whenever the pending slot flips. Used
// to push live updates to connected clients.
func (s *BreakScheduler) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// TriggerBreak makes a break pending for the app. The continuous-use counter
// resets and any running countdown ends either way; if a break is already
// pending no second overlay is stacked on top of it.
func (s *BreakScheduler) TriggerBreak(packageName string, origin domain.BreakOrigin) {
	s.acc.Reset(packageName)
	s.timers.End(packageName)

	s.mu.Lock()
	if s.pending != nil {
		s.mu.Unlock()
		slog.Debug("Break already pending, not stacking another",
			"package_name", packageName, "origin", string(origin))
		return
	}

	activity := breakActivities[s.pick(len(breakActivities))]
	s.pending = &domain.PendingBreak{
		Activity:    activity,
		PackageName: packageName,
		Origin:      origin,
		TriggeredAt: s.clock.Now(),
	}
	onChange := s.onChange
	s.mu.Unlock()

	slog.Info("Break triggered",
		"package_name", packageName,
		"origin", string(origin),
		"activity", activity.ID)
	metrics.BreaksTriggeredTotal.WithLabelValues(string(origin)).Inc()

	s.notifier.Send(
		"Break Time!",
		fmt.Sprintf("Time for a break: %s", activity.Title),
		"break-time",
	)

	if onChange != nil {
		onChange()
	}
}

// CompleteBreak clears the pending slot and appends the durable record. The
// recorded duration is the activity's nominal length, not measured time.
func (s *BreakScheduler) CompleteBreak(ctx context.Context) (*domain.BreakRecord, error) {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return nil, domain.ErrNoPendingBreak
	}
	pending := *s.pending
	s.pending = nil
	onChange := s.onChange
	s.mu.Unlock()

	rec := domain.BreakRecord{
		ID:              uuid.NewString(),
		DurationSeconds: int64(pending.Activity.DurationMinutes) * 60,
		ActivityType:    pending.Activity.Type,
		OccurredAt:      s.clock.Now(),
	}
	if err := s.ledger.AppendBreak(ctx, rec); err != nil {
		return nil, fmt.Errorf("append break record: %w", err)
	}

	slog.Info("Break completed",
		"package_name", pending.PackageName,
		"activity", pending.Activity.ID,
		"duration_seconds", rec.DurationSeconds)
	metrics.BreaksCompletedTotal.Inc()

	if onChange != nil {
		onChange()
	}
	return &rec, nil
}

// Pending returns a copy of the pending break, or nil when none is active.
func (s *BreakScheduler) Pending() *domain.PendingBreak {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	cp := *s.pending
	return &cp
}
