package domain

import "time"

// BreakActivity is one entry of the fixed break catalog. DurationMinutes is
// the nominal length persisted when the break completes, not a measured time.
type BreakActivity struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	DurationMinutes int    `json:"durationMinutes"`
	Type            string `json:"type"` // physical, mental, creative, social
	Icon            string `json:"icon"`
}

// BreakRecord is an append-only record of a completed break.
type BreakRecord struct {
	ID              string    `json:"id"`
	DurationSeconds int64     `json:"durationSeconds"`
	ActivityType    string    `json:"activityType,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// BreakOrigin distinguishes how a break was triggered.
type BreakOrigin string

const (
	// BreakOriginTimer: an explicit countdown session expired.
	BreakOriginTimer BreakOrigin = "timer"
	// BreakOriginContinuousUse: passive sampling crossed the break-frequency
	// threshold.
	BreakOriginContinuousUse BreakOrigin = "continuous_use"
)

// PendingBreak is the break currently shown to the user, if any.
type PendingBreak struct {
	Activity    BreakActivity `json:"activity"`
	PackageName string        `json:"packageName"`
	Origin      BreakOrigin   `json:"origin"`
	TriggeredAt time.Time     `json:"triggeredAt"`
}
