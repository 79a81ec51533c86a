package engine

import "sync"

const (
	// streakRiskSeconds is the same-day usage at which a one-time warning
	// fires, 10 minutes before the one-hour success threshold tips.
	streakRiskSeconds = 50 * 60

	// nearZeroSeconds re-arms the warning flag: usage dropping to (almost)
	// nothing means a new day has started.
	nearZeroSeconds = 60
)

// Accumulator sums reconciled deltas per app since the last break and decides
// break-trigger moments. Delta-based on purpose: OS sampling is irregular and
// can under- or over-report, so absolute timestamps would drift while deltas
// stay robust to jitter.
//
// The counters are transient by design: reset on break, forgotten on removal,
// implicitly zero after a restart.
type Accumulator struct {
	mu         sync.Mutex
	continuous map[string]int64
	warned     map[string]bool
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		continuous: make(map[string]int64),
		warned:     make(map[string]bool),
	}
}

// Add credits delta seconds of continuous use and reports whether the break
// threshold was crossed. On a crossing the counter resets to zero and the
// remainder is discarded, so a single window can never double-fire.
func (a *Accumulator) Add(packageName string, delta, thresholdSeconds int64) bool {
	if delta <= 0 {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.continuous[packageName] += delta
	if a.continuous[packageName] < thresholdSeconds {
		return false
	}
	a.continuous[packageName] = 0
	return true
}

// Continuous returns the seconds accumulated since the last break.
func (a *Accumulator) Continuous(packageName string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.continuous[packageName]
}

// Reset zeroes the counter, called when a break is triggered for the app
// through any path.
func (a *Accumulator) Reset(packageName string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.continuous[packageName] = 0
}

// Forget drops all state for an app that stopped being tracked.
func (a *Accumulator) Forget(packageName string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.continuous, packageName)
	delete(a.warned, packageName)
}

// ShouldWarn reports whether a one-time streak-risk warning should fire for
// the app given its corrected same-day usage. The flag re-arms when usage
// drops near zero.
func (a *Accumulator) ShouldWarn(packageName string, secondsToday int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if secondsToday < nearZeroSeconds {
		a.warned[packageName] = false
		return false
	}
	if a.warned[packageName] || secondsToday < streakRiskSeconds {
		return false
	}
	a.warned[packageName] = true
	return true
}
