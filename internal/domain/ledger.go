package domain

import "context"

// Ledger is the durable store for tracked apps, daily usage, breaks and
// settings. Pure storage, no business logic. All values are JSON documents
// under string keys; dates are local-time YYYY-MM-DD strings.
//
// Corruption policy: a malformed stored document reads back as absent data
// (empty defaults), never as an error that stops the engine.
type Ledger interface {
	// Tracked apps (keyed by package name, unique, bounded by MaxTrackedApps)

	ListApps(ctx context.Context) ([]TrackedApp, error)
	GetApp(ctx context.Context, packageName string) (*TrackedApp, error)
	AddApp(ctx context.Context, app TrackedApp) error
	RemoveApp(ctx context.Context, packageName string) error
	UpdateAppLimit(ctx context.Context, packageName string, timeLimitMinutes int) error

	// Daily usage (one record per date; save overwrites the whole record,
	// callers supply fully reconciled values, not deltas)

	GetDailyUsage(ctx context.Context, date string) (*DailyUsageRecord, error)
	SaveDailyUsage(ctx context.Context, record DailyUsageRecord) error

	// Breaks (append-only, queried by date prefix)

	AppendBreak(ctx context.Context, rec BreakRecord) error
	ListBreaks(ctx context.Context, date string) ([]BreakRecord, error)

	// Settings

	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, settings Settings) error

	// Maintenance. PruneOlderThan removes usage and break records older than
	// the cutoff; run once per process start.

	PruneOlderThan(ctx context.Context, daysToKeep int) error
}
