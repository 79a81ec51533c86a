package engine

import (
	"log/slog"
	"time"

	"github.com/pscheid92/screencoach/internal/domain"
	"github.com/pscheid92/screencoach/internal/metrics"
)

// sanityBufferSeconds absorbs clock skew and day-boundary jitter when
// checking a reading against the time elapsed since local midnight.
const sanityBufferSeconds = 15 * 60

// Reconciler turns raw cumulative readings into trustworthy seconds-used-today
// values. It self-heals three anomaly classes: a baseline captured at
// registration time, impossible multi-day/rolled-over totals, and readings
// that would shrink already-recorded history.
//
// All per-day state (healing offsets, last reconciled values) is keyed to one
// local calendar date and dropped on rollover. Not safe for concurrent use;
// the sync loop owns it.
type Reconciler struct {
	date           string
	healingOffsets map[string]int64
	lastReconciled map[string]int64
}

func NewReconciler() *Reconciler {
	return &Reconciler{
		healingOffsets: make(map[string]int64),
		lastReconciled: make(map[string]int64),
	}
}

// ReconcileResult is one corrected sample for one package.
type ReconcileResult struct {
	// Seconds is the corrected seconds-used-today. Never below the value
	// already stored in the ledger for today.
	Seconds int64
	// Delta is the increase versus the last reconciled value this process
	// has seen. Drives the continuous-use accumulator. Never negative.
	Delta int64
	// Healed is true when this sample created a new healing offset.
	Healed bool
}

// Reconcile corrects one raw reading. storedSeconds is the per-app value the
// ledger already holds for today; it wins over any smaller corrected reading
// (a single noisy sample never shrinks accumulated history).
func (r *Reconciler) Reconcile(app domain.TrackedApp, raw domain.UsageStats, storedSeconds int64, now time.Time) ReconcileResult {
	date := domain.LocalDate(now)
	r.rollover(date)

	pkg := app.PackageName
	reported := raw.ForegroundMillis / 1000

	// Baseline captured when the app was registered mid-day. Only valid for
	// the day it was captured on.
	if app.UsageOffsetDate == date && app.UsageOffsetSeconds > 0 {
		reported -= app.UsageOffsetSeconds
		if reported < 0 {
			reported = 0
		}
	}

	elapsed := int64(now.Sub(domain.Midnight(now)).Seconds())

	healed := false
	if offset, ok := r.healingOffsets[pkg]; ok {
		reported -= offset
		if reported < 0 {
			reported = 0
		}
	} else if reported > elapsed+sanityBufferSeconds {
		// The platform returned more usage than the day can hold: a
		// multi-day or rolled-over total. Record the full reading as the
		// correction for the rest of the day; this fires at most once per
		// (date, package).
		r.healingOffsets[pkg] = reported
		healed = true
		slog.Warn("Impossible cumulative reading, healing offset created",
			"package_name", pkg,
			"reported_seconds", reported,
			"elapsed_seconds", elapsed)
		metrics.HealingOffsetsCreated.Inc()
		reported = 0
	}

	corrected := reported
	if storedSeconds > corrected {
		corrected = storedSeconds
	}

	last, ok := r.lastReconciled[pkg]
	if !ok {
		// First sample this process has seen for the package today: history
		// from the ledger is the baseline, not a fresh delta.
		last = storedSeconds
	}

	delta := corrected - last
	if delta < 0 {
		delta = 0
	}
	r.lastReconciled[pkg] = corrected

	return ReconcileResult{Seconds: corrected, Delta: delta, Healed: healed}
}

// Forget drops all per-package state, used when an app stops being tracked.
func (r *Reconciler) Forget(packageName string) {
	delete(r.healingOffsets, packageName)
	delete(r.lastReconciled, packageName)
}

// rollover clears per-day state when the local date changes. Healing offsets
// are intentionally day-scoped: yesterday's anomaly says nothing about today.
func (r *Reconciler) rollover(date string) {
	if r.date == date {
		return
	}
	r.date = date
	r.healingOffsets = make(map[string]int64)
	r.lastReconciled = make(map[string]int64)
}
