package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/screencoach/internal/domain"
	"github.com/pscheid92/screencoach/internal/metrics"
)

// TimerManager runs explicit, user-initiated countdown sessions independent
// of passive OS sampling. At most one session per app; several apps can count
// down concurrently. A single 1 Hz tick decrements every running session
// under one lock hold so displayed countdowns never skew against each other.
type TimerManager struct {
	clock     clockwork.Clock
	onExpired func(packageName string)

	mu       sync.Mutex
	sessions map[string]*timerSession

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

type timerSession struct {
	id        string
	appName   string
	startTime time.Time
	total     int64
	remaining int64
	running   bool
}

// NewTimerManager starts the tick loop. onExpired is invoked outside the lock
// whenever a session counts down to zero.
func NewTimerManager(clock clockwork.Clock, onExpired func(packageName string)) *TimerManager {
	m := &TimerManager{
		clock:     clock,
		onExpired: onExpired,
		sessions:  make(map[string]*timerSession),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *TimerManager) run() {
	defer close(m.done)

	ticker := m.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			m.tick()
		case <-m.stopCh:
			return
		}
	}
}

func (m *TimerManager) tick() {
	m.mu.Lock()
	var expired []string
	for pkg, s := range m.sessions {
		if !s.running {
			continue
		}
		s.remaining--
		if s.remaining <= 0 {
			delete(m.sessions, pkg)
			expired = append(expired, pkg)
		}
	}
	metrics.ActiveTimers.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, pkg := range expired {
		if m.onExpired != nil {
			m.onExpired(pkg)
		}
	}
}

// Start creates a session for the app with the full daily limit on the clock.
// Idempotent: a second call while a session exists returns the existing
// snapshot and reports started=false.
func (m *TimerManager) Start(app domain.TrackedApp) (domain.TimerSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[app.PackageName]; ok {
		return snapshotOf(app.PackageName, existing), false
	}

	total := int64(app.TimeLimitMinutes) * 60
	s := &timerSession{
		id:        uuid.NewString(),
		appName:   app.Name,
		startTime: m.clock.Now(),
		total:     total,
		remaining: total,
		running:   true,
	}
	m.sessions[app.PackageName] = s
	metrics.ActiveTimers.Set(float64(len(m.sessions)))
	return snapshotOf(app.PackageName, s), true
}

// Pause freezes the countdown without touching the remaining time.
func (m *TimerManager) Pause(packageName string) error {
	return m.setRunning(packageName, false)
}

// Resume continues a paused countdown.
func (m *TimerManager) Resume(packageName string) error {
	return m.setRunning(packageName, true)
}

func (m *TimerManager) setRunning(packageName string, running bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[packageName]
	if !ok {
		return domain.ErrTimerNotFound
	}
	s.running = running
	return nil
}

// Stop removes the session without triggering a break: explicit cancellation
// is not an achievement.
func (m *TimerManager) Stop(packageName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[packageName]; !ok {
		return domain.ErrTimerNotFound
	}
	delete(m.sessions, packageName)
	metrics.ActiveTimers.Set(float64(len(m.sessions)))
	return nil
}

// End silently removes a session if one exists. Used by the break scheduler
// so a forced break never double-counts an in-flight session as an expiry.
func (m *TimerManager) End(packageName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, packageName)
	metrics.ActiveTimers.Set(float64(len(m.sessions)))
}

// Snapshots returns a stable-ordered view of all sessions for the UI.
func (m *TimerManager) Snapshots() []domain.TimerSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snaps := make([]domain.TimerSnapshot, 0, len(m.sessions))
	for pkg, s := range m.sessions {
		snaps = append(snaps, snapshotOf(pkg, s))
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].PackageName < snaps[j].PackageName })
	return snaps
}

// Shutdown stops the tick loop and waits for it to exit.
func (m *TimerManager) Shutdown() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	<-m.done
}

func snapshotOf(packageName string, s *timerSession) domain.TimerSnapshot {
	return domain.TimerSnapshot{
		SessionID:        s.id,
		PackageName:      packageName,
		AppName:          s.appName,
		StartTime:        s.startTime,
		TotalSeconds:     s.total,
		RemainingSeconds: s.remaining,
		Running:          s.running,
	}
}
