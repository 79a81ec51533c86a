package domain

import "time"

// TimerSnapshot is the read-only view of an active countdown session handed
// to the UI boundary. At most one session exists per package at any instant.
type TimerSnapshot struct {
	SessionID        string    `json:"sessionId"`
	PackageName      string    `json:"packageName"`
	AppName          string    `json:"appName"`
	StartTime        time.Time `json:"startTime"`
	TotalSeconds     int64     `json:"totalSeconds"`
	RemainingSeconds int64     `json:"remainingSeconds"`
	Running          bool      `json:"running"`
}
