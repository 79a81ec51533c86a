// Package source adapts the host's process table into the usage-source
// contract. It is a best-effort collaborator: every failure degrades to
// "no data" rather than an error, because the engine must keep running
// without it.
package source

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/screencoach/internal/domain"
	"github.com/shirou/gopsutil/process"
)

// ProcessSource reports cumulative foreground time per tracked package by
// watching matching processes. A package matches a process when the process
// name equals the package's last dot-segment (e.g. "org.mozilla.firefox"
// matches "firefox").
type ProcessSource struct {
	clock     clockwork.Clock
	available bool
}

// NewProcessSource probes the process table once. Availability is resolved
// here and never re-checked: an unsupported platform is a permanent
// condition.
func NewProcessSource(clock clockwork.Clock) *ProcessSource {
	_, err := process.Processes()
	if err != nil {
		slog.Warn("Process table not readable, usage tracking disabled", "error", err)
	}
	return &ProcessSource{clock: clock, available: err == nil}
}

func (s *ProcessSource) Available() bool {
	return s.available
}

func (s *ProcessSource) HasPermission() bool {
	if !s.available {
		return false
	}
	_, err := process.Processes()
	return err == nil
}

// RequestPermission has no settings surface to open on a plain host; the
// outcome is observed through HasPermission like any other source.
func (s *ProcessSource) RequestPermission() {
	slog.Info("Usage source permission is granted by the OS process table, nothing to request")
}

func (s *ProcessSource) QueryUsage(ctx context.Context, packages []string, sinceEpochMillis int64) map[string]domain.UsageStats {
	result := make(map[string]domain.UsageStats)
	if !s.available || len(packages) == 0 {
		return result
	}

	procs, err := process.Processes()
	if err != nil {
		slog.Debug("Process listing failed, returning empty usage", "error", err)
		return result
	}

	names := make(map[string]string, len(packages)) // process name -> package
	for _, pkg := range packages {
		names[processName(pkg)] = pkg
	}

	now := s.clock.Now().UnixMilli()
	for _, p := range procs {
		if p == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return result
		default:
		}

		name, err := p.Name()
		if err != nil {
			continue
		}
		pkg, ok := names[strings.ToLower(name)]
		if !ok {
			continue
		}

		created, err := p.CreateTime()
		if err != nil {
			continue
		}

		start := created
		if sinceEpochMillis > start {
			start = sinceEpochMillis
		}
		if start >= now {
			continue
		}

		// Several processes can carry the same name; the longest-lived one
		// wins, approximating the cumulative counter a platform API reports.
		stats := result[pkg]
		if elapsed := now - start; elapsed > stats.ForegroundMillis {
			stats = domain.UsageStats{
				PackageName:         pkg,
				ForegroundMillis:    elapsed,
				LastUsedEpochMillis: now,
			}
		}
		result[pkg] = stats
	}

	return result
}

// processName maps a package identifier to the process name to look for.
func processName(pkg string) string {
	if i := strings.LastIndex(pkg, "."); i >= 0 {
		return strings.ToLower(pkg[i+1:])
	}
	return strings.ToLower(pkg)
}
