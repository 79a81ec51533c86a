package app

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/screencoach/internal/domain"
	"github.com/pscheid92/screencoach/internal/engine"
)

// Service is the application layer, the only component that references
// multiple engine components. It orchestrates all use cases; the HTTP layer
// calls nothing else.
type Service struct {
	ledger    domain.Ledger
	source    domain.UsageSource
	clock     clockwork.Clock
	timers    *engine.TimerManager
	scheduler *engine.BreakScheduler
	streaks   *engine.StreakEvaluator
	syncer    *engine.Syncer
}

func NewService(ledger domain.Ledger, source domain.UsageSource, clock clockwork.Clock, timers *engine.TimerManager, scheduler *engine.BreakScheduler, streaks *engine.StreakEvaluator, syncer *engine.Syncer) *Service {
	return &Service{
		ledger:    ledger,
		source:    source,
		clock:     clock,
		timers:    timers,
		scheduler: scheduler,
		streaks:   streaks,
		syncer:    syncer,
	}
}

// --- Tracked apps ---

// ListApps returns all tracked apps.
func (s *Service) ListApps(ctx context.Context) ([]domain.TrackedApp, error) {
	return s.ledger.ListApps(ctx)
}

// AddApp registers an app for tracking. Usage already accrued on the device
// today is captured as a baseline offset so day-one numbers start at zero.
func (s *Service) AddApp(ctx context.Context, name, packageName string, timeLimitMinutes int) (*domain.TrackedApp, error) {
	name = strings.TrimSpace(name)
	packageName = strings.TrimSpace(packageName)
	if name == "" || packageName == "" {
		return nil, domain.ErrInvalidApp
	}
	if timeLimitMinutes <= 0 {
		return nil, domain.ErrInvalidApp
	}

	app := domain.TrackedApp{
		ID:               uuid.NewString(),
		Name:             name,
		PackageName:      packageName,
		TimeLimitMinutes: timeLimitMinutes,
	}

	now := s.clock.Now()
	if s.source.Available() && s.source.HasPermission() {
		stats := s.source.QueryUsage(ctx, []string{packageName}, domain.Midnight(now).UnixMilli())
		if raw, ok := stats[packageName]; ok && raw.ForegroundMillis > 0 {
			app.UsageOffsetSeconds = raw.ForegroundMillis / 1000
			app.UsageOffsetDate = domain.LocalDate(now)
		}
	}

	if err := s.ledger.AddApp(ctx, app); err != nil {
		return nil, err
	}
	return &app, nil
}

// UpdateAppLimit changes the daily limit. Running countdown sessions keep
// their original duration.
func (s *Service) UpdateAppLimit(ctx context.Context, packageName string, timeLimitMinutes int) (*domain.TrackedApp, error) {
	if timeLimitMinutes <= 0 {
		return nil, domain.ErrInvalidApp
	}
	if err := s.ledger.UpdateAppLimit(ctx, packageName, timeLimitMinutes); err != nil {
		return nil, err
	}
	return s.ledger.GetApp(ctx, packageName)
}

// RemoveApp stops tracking an app. Historical usage stays in the daily
// records; all live state for the app is dropped. An in-flight countdown ends
// silently, without a break.
func (s *Service) RemoveApp(ctx context.Context, packageName string) error {
	if err := s.ledger.RemoveApp(ctx, packageName); err != nil {
		return err
	}
	s.syncer.Forget(packageName)
	s.timers.End(packageName)
	return nil
}

// --- Usage, breaks, streak ---

// TodayUsage returns today's record, an empty one when no sync has run yet.
func (s *Service) TodayUsage(ctx context.Context) (*domain.DailyUsageRecord, error) {
	return s.UsageForDate(ctx, domain.LocalDate(s.clock.Now()))
}

// UsageForDate returns the record for a date, never nil.
func (s *Service) UsageForDate(ctx context.Context, date string) (*domain.DailyUsageRecord, error) {
	record, err := s.ledger.GetDailyUsage(ctx, date)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &domain.DailyUsageRecord{Date: date, PerApp: make(map[string]int64)}
	}
	return record, nil
}

// BreaksForDate returns the completed breaks of a date, oldest first.
func (s *Service) BreaksForDate(ctx context.Context, date string) ([]domain.BreakRecord, error) {
	return s.ledger.ListBreaks(ctx, date)
}

// CurrentStreak returns the number of consecutive successful days ending
// today.
func (s *Service) CurrentStreak(ctx context.Context) (int, error) {
	return s.streaks.CurrentStreak(ctx)
}

// Overview is the dashboard summary: today versus yesterday plus goals.
type Overview struct {
	Date                  string `json:"date"`
	TotalSecondsToday     int64  `json:"totalSecondsToday"`
	TotalSecondsYesterday int64  `json:"totalSecondsYesterday"`
	BreaksToday           int    `json:"breaksToday"`
	DailyGoalMinutes      int    `json:"dailyGoalMinutes"`
	DailyBreakGoal        int    `json:"dailyBreakGoal"`
	Streak                int    `json:"streak"`

	// TrackingAvailable is false when the platform has no usage source at
	// all; explicit timers still work in that state.
	TrackingAvailable bool `json:"trackingAvailable"`
}

// GetOverview assembles the dashboard summary from the ledger.
func (s *Service) GetOverview(ctx context.Context) (*Overview, error) {
	now := s.clock.Now()
	today := domain.LocalDate(now)
	yesterday := domain.LocalDate(now.AddDate(0, 0, -1))

	todayRec, err := s.UsageForDate(ctx, today)
	if err != nil {
		return nil, err
	}
	yesterdayRec, err := s.UsageForDate(ctx, yesterday)
	if err != nil {
		return nil, err
	}
	breaks, err := s.ledger.ListBreaks(ctx, today)
	if err != nil {
		return nil, err
	}
	settings, err := s.ledger.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	streak, err := s.streaks.CurrentStreak(ctx)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Date:                  today,
		TotalSecondsToday:     todayRec.TotalSeconds,
		TotalSecondsYesterday: yesterdayRec.TotalSeconds,
		BreaksToday:           len(breaks),
		DailyGoalMinutes:      settings.DailyGoalMinutes,
		DailyBreakGoal:        settings.DailyBreakGoal,
		Streak:                streak,
		TrackingAvailable:     s.source.Available(),
	}, nil
}

// --- Settings ---

func (s *Service) GetSettings(ctx context.Context) (domain.Settings, error) {
	return s.ledger.GetSettings(ctx)
}

// SaveSettings validates and persists the whole settings document.
func (s *Service) SaveSettings(ctx context.Context, settings domain.Settings) error {
	if settings.DailyGoalMinutes <= 0 || settings.BreakFrequencyMinutes <= 0 || settings.DailyBreakGoal < 0 {
		return domain.ErrInvalidSettings
	}
	return s.ledger.SaveSettings(ctx, settings)
}

// --- Timers ---

// StartTimer starts a countdown session for a tracked app. Idempotent: a
// second start returns the running session unchanged.
func (s *Service) StartTimer(ctx context.Context, packageName string) (domain.TimerSnapshot, error) {
	app, err := s.ledger.GetApp(ctx, packageName)
	if err != nil {
		return domain.TimerSnapshot{}, err
	}
	snap, _ := s.timers.Start(*app)
	return snap, nil
}

func (s *Service) PauseTimer(packageName string) error {
	return s.timers.Pause(packageName)
}

func (s *Service) ResumeTimer(packageName string) error {
	return s.timers.Resume(packageName)
}

func (s *Service) StopTimer(packageName string) error {
	return s.timers.Stop(packageName)
}

func (s *Service) Timers() []domain.TimerSnapshot {
	return s.timers.Snapshots()
}

// --- Breaks and visibility ---

// PendingBreak returns the break currently awaiting completion, if any.
func (s *Service) PendingBreak() *domain.PendingBreak {
	return s.scheduler.Pending()
}

// CompleteBreak marks the pending break done and persists it.
func (s *Service) CompleteBreak(ctx context.Context) (*domain.BreakRecord, error) {
	return s.scheduler.CompleteBreak(ctx)
}

// SetVisibility reports whether a client UI is in the foreground, steering the
// sync cadence.
func (s *Service) SetVisibility(foreground bool) {
	s.syncer.SetVisibility(foreground)
}

// BreakActivities returns the suggestion catalog.
func (s *Service) BreakActivities() []domain.BreakActivity {
	return engine.Activities()
}
