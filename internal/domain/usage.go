package domain

import "context"

// DailyUsageRecord is the per-day usage ledger entry. One record per local
// calendar day (YYYY-MM-DD), created lazily on first sample. Per-app seconds
// for "today" never decrease across syncs; TotalSeconds always equals the sum
// of PerApp values written in the same save.
type DailyUsageRecord struct {
	Date         string           `json:"date"`
	TotalSeconds int64            `json:"totalSeconds"`
	PerApp       map[string]int64 `json:"apps"`
}

// UsageStats is a single cumulative reading from the usage source for one
// package. The counter is externally owned: it can start mid-day, jump
// backwards, or report multi-day totals. Callers must never trust it raw.
type UsageStats struct {
	PackageName         string
	ForegroundMillis    int64
	LastUsedEpochMillis int64
}

// UsageSource wraps the platform usage-statistics capability. It is external,
// best-effort and possibly absent: a missing package in the QueryUsage result
// means "no data", not "zero usage", and implementations return an empty map
// rather than an error when degraded.
type UsageSource interface {
	// Available reports whether the capability exists at all on this
	// platform. Resolved once at startup; false is permanent.
	Available() bool

	// HasPermission reports whether usage data may be read right now.
	// Recoverable: callers re-check every cycle.
	HasPermission() bool

	// RequestPermission opens the external settings surface. The outcome is
	// observed asynchronously through HasPermission, never returned here.
	RequestPermission()

	// QueryUsage returns cumulative foreground time per package over
	// [sinceEpochMillis, now). Packages without data are absent from the map.
	QueryUsage(ctx context.Context, packages []string, sinceEpochMillis int64) map[string]UsageStats
}
