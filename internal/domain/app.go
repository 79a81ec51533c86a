package domain

// MaxTrackedApps bounds the tracked set. Everything downstream (sync cycle
// cost, websocket payload size) assumes a small, user-curated list.
const MaxTrackedApps = 10

// TrackedApp is a user-registered application with a daily time limit.
// PackageName is the external app identity and the unique key across the
// tracked set.
type TrackedApp struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PackageName string `json:"packageName"`

	// TimeLimitMinutes drives both the countdown timer duration and the
	// daily-limit displays.
	TimeLimitMinutes int `json:"timeLimitMinutes"`

	// UsageOffsetSeconds is the usage already accrued on the device when the
	// app was registered mid-day. It is only subtracted from readings while
	// UsageOffsetDate still equals the current local date.
	UsageOffsetSeconds int64  `json:"usageOffsetSeconds,omitempty"`
	UsageOffsetDate    string `json:"usageOffsetDate,omitempty"`
}
