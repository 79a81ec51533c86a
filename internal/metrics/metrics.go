package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync pipeline metrics
var (
	// SyncCyclesTotal tracks usage sync cycles by outcome
	SyncCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_cycles_total",
			Help: "Total usage sync cycles by outcome (ok/no_permission/no_apps/stale/error)",
		},
		[]string{"outcome"},
	)

	// SyncDuration tracks sync cycle duration in seconds
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_cycle_duration_seconds",
			Help:    "Usage sync cycle duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	// HealingOffsetsCreated tracks impossible-cumulative anomalies healed
	HealingOffsetsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "healing_offsets_created_total",
			Help: "Total healing offsets created for impossible cumulative readings",
		},
	)

	// UsageSecondsRecorded tracks reconciled usage seconds written to the ledger
	UsageSecondsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_seconds_recorded_total",
			Help: "Total reconciled usage seconds written to the daily ledger",
		},
	)
)

// Break and timer metrics
var (
	// BreaksTriggeredTotal tracks break triggers by origin
	BreaksTriggeredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breaks_triggered_total",
			Help: "Total break triggers by origin (timer/continuous_use)",
		},
		[]string{"origin"},
	)

	// BreaksCompletedTotal tracks breaks the user completed
	BreaksCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "breaks_completed_total",
			Help: "Total breaks completed and persisted",
		},
	)

	// StreakRiskWarningsTotal tracks one-time streak risk warnings
	StreakRiskWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_risk_warnings_total",
			Help: "Total streak-risk warnings raised",
		},
	)

	// ActiveTimers tracks currently active countdown sessions
	ActiveTimers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_timers",
			Help: "Number of active countdown timer sessions",
		},
	)
)

// Boundary metrics
var (
	// NotificationsTotal tracks notification sink calls by status
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total notifications sent by status (ok/error/dropped)",
		},
		[]string{"status"},
	)

	// WebSocketClients tracks connected snapshot subscribers
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Currently connected WebSocket snapshot subscribers",
		},
	)
)
