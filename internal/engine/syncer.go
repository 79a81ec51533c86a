package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/screencoach/internal/domain"
	"github.com/pscheid92/screencoach/internal/metrics"
)

const (
	foregroundSyncInterval = time.Minute
	backgroundSyncInterval = 5 * time.Minute
)

// Syncer drives the periodic usage sync: query the platform source, reconcile
// every tracked app, persist the daily record, and feed the continuous-use
// accumulator. One goroutine owns the loop; visibility flips and app removals
// arrive from the outside.
type Syncer struct {
	ledger    domain.Ledger
	source    domain.UsageSource
	notifier  domain.Notifier
	clock     clockwork.Clock
	rec       *Reconciler
	acc       *Accumulator
	scheduler *BreakScheduler

	// generation invalidates in-flight source queries when tracked apps or
	// visibility change underneath them.
	generation atomic.Uint64

	mu                  sync.Mutex
	foreground          bool
	requestedPermission bool

	kick chan struct{}
}

func NewSyncer(ledger domain.Ledger, source domain.UsageSource, notifier domain.Notifier, clock clockwork.Clock, rec *Reconciler, acc *Accumulator, scheduler *BreakScheduler) *Syncer {
	return &Syncer{
		ledger:    ledger,
		source:    source,
		notifier:  notifier,
		clock:     clock,
		rec:       rec,
		acc:       acc,
		scheduler: scheduler,
		kick:      make(chan struct{}, 1),
	}
}

// Run blocks until ctx is cancelled. When the platform has no usage source at
// all the loop exits immediately; explicit timers keep working without it.
func (s *Syncer) Run(ctx context.Context) {
	if !s.source.Available() {
		slog.Warn("Usage source unavailable on this platform, passive tracking disabled")
		return
	}

	s.syncOnce(ctx)

	ticker := s.clock.NewTicker(s.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.syncOnce(ctx)
		case <-s.kick:
			ticker.Reset(s.interval())
			if s.isForeground() {
				s.syncOnce(ctx)
			}
		}
	}
}

// SetVisibility switches between the foreground and background sync cadence.
// A flip to foreground triggers an immediate sync so the UI never shows stale
// numbers after a return.
func (s *Syncer) SetVisibility(foreground bool) {
	s.mu.Lock()
	changed := s.foreground != foreground
	s.foreground = foreground
	s.mu.Unlock()

	if !changed {
		return
	}
	s.generation.Add(1)
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Forget drops all in-memory state for an app that stopped being tracked and
// invalidates any in-flight query that still includes it.
func (s *Syncer) Forget(packageName string) {
	s.mu.Lock()
	s.rec.Forget(packageName)
	s.mu.Unlock()
	s.acc.Forget(packageName)
	s.generation.Add(1)
}

func (s *Syncer) isForeground() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.foreground
}

func (s *Syncer) interval() time.Duration {
	if s.isForeground() {
		return foregroundSyncInterval
	}
	return backgroundSyncInterval
}

func (s *Syncer) syncOnce(ctx context.Context) {
	start := s.clock.Now()
	outcome := s.sync(ctx)
	metrics.SyncCyclesTotal.WithLabelValues(outcome).Inc()
	metrics.SyncDuration.Observe(s.clock.Since(start).Seconds())
	if outcome != "ok" {
		slog.Debug("Sync cycle finished", "outcome", outcome)
	}
}

func (s *Syncer) sync(ctx context.Context) string {
	apps, err := s.ledger.ListApps(ctx)
	if err != nil {
		slog.Error("Sync failed to list tracked apps", "error", err)
		return "error"
	}
	if len(apps) == 0 {
		return "no_apps"
	}

	if !s.source.HasPermission() {
		s.mu.Lock()
		first := !s.requestedPermission
		s.requestedPermission = true
		s.mu.Unlock()
		if first {
			slog.Warn("Usage access not granted, requesting permission")
			s.source.RequestPermission()
		}
		return "no_permission"
	}

	now := s.clock.Now()
	midnight := domain.Midnight(now)
	packages := make([]string, len(apps))
	for i, app := range apps {
		packages[i] = app.PackageName
	}

	gen := s.generation.Load()
	stats := s.source.QueryUsage(ctx, packages, midnight.UnixMilli())
	if s.generation.Load() != gen {
		// Tracked apps or visibility changed while the query ran; the result
		// no longer describes the current world.
		return "stale"
	}

	if err := s.apply(ctx, apps, stats, now); err != nil {
		slog.Error("Sync failed to apply usage", "error", err)
		return "error"
	}
	return "ok"
}

// apply reconciles every sampled app into today's record and persists it.
func (s *Syncer) apply(ctx context.Context, apps []domain.TrackedApp, stats map[string]domain.UsageStats, now time.Time) error {
	today := domain.LocalDate(now)

	record, err := s.ledger.GetDailyUsage(ctx, today)
	if err != nil {
		return fmt.Errorf("load daily usage: %w", err)
	}
	if record == nil {
		record = &domain.DailyUsageRecord{Date: today, PerApp: make(map[string]int64)}
	}
	if record.PerApp == nil {
		record.PerApp = make(map[string]int64)
	}

	settings, err := s.ledger.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	threshold := int64(settings.BreakFrequencyMinutes) * 60

	var breakPkgs []string
	var warnApps []domain.TrackedApp

	s.mu.Lock()
	for _, app := range apps {
		raw, ok := stats[app.PackageName]
		if !ok {
			// No data is not zero usage; leave the stored value alone.
			continue
		}

		stored := record.PerApp[app.PackageName]
		res := s.rec.Reconcile(app, raw, stored, now)

		if res.Seconds > stored {
			metrics.UsageSecondsRecorded.Add(float64(res.Seconds - stored))
		}
		record.PerApp[app.PackageName] = res.Seconds

		if s.acc.Add(app.PackageName, res.Delta, threshold) {
			breakPkgs = append(breakPkgs, app.PackageName)
		}
		if s.acc.ShouldWarn(app.PackageName, res.Seconds) {
			warnApps = append(warnApps, app)
		}
	}
	s.mu.Unlock()

	var total int64
	for _, seconds := range record.PerApp {
		total += seconds
	}
	record.TotalSeconds = total

	if err := s.ledger.SaveDailyUsage(ctx, *record); err != nil {
		return fmt.Errorf("save daily usage: %w", err)
	}

	for _, pkg := range breakPkgs {
		s.scheduler.TriggerBreak(pkg, domain.BreakOriginContinuousUse)
	}
	for _, app := range warnApps {
		slog.Info("Streak at risk", "package_name", app.PackageName)
		metrics.StreakRiskWarningsTotal.Inc()
		s.notifier.Send(
			"Streak at risk",
			fmt.Sprintf("%s is close to one hour today. Ten more minutes breaks your streak.", app.Name),
			"streak-risk",
		)
	}
	return nil
}
