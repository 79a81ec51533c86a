package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/screencoach/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// schemaVersion tags the ledger layout. On mismatch the entire ledger is
// wiped and reinitialized: the data is locally derived and low-stakes, so a
// destructive migration beats carrying converters.
const schemaVersion = "2.0.0"

const (
	keyVersion  = "screencoach:version"
	keyApps     = "screencoach:apps"
	keySettings = "screencoach:settings"

	usageKeyPrefix = "screencoach:usage:"
	breakKeyPrefix = "screencoach:breaks:"
)

// Ledger is the redis-backed implementation of domain.Ledger. All values are
// JSON documents; malformed documents read back as absent data.
type Ledger struct {
	rdb   *goredis.Client
	clock clockwork.Clock
}

func NewLedger(rdb *goredis.Client, clock clockwork.Clock) *Ledger {
	return &Ledger{rdb: rdb, clock: clock}
}

// Init checks the schema version and wipes the ledger on mismatch. Must be
// called once before first use.
func (l *Ledger) Init(ctx context.Context) error {
	stored, err := l.rdb.Get(ctx, keyVersion).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if stored == schemaVersion {
		return nil
	}

	if stored != "" {
		slog.Warn("Ledger schema version mismatch, wiping all data", "stored", stored, "expected", schemaVersion)
	}
	if err := l.wipe(ctx); err != nil {
		return err
	}
	return l.rdb.Set(ctx, keyVersion, schemaVersion, 0).Err()
}

func (l *Ledger) wipe(ctx context.Context) error {
	if err := l.rdb.Del(ctx, keyApps, keySettings).Err(); err != nil {
		return fmt.Errorf("failed to wipe ledger: %w", err)
	}
	for _, prefix := range []string{usageKeyPrefix, breakKeyPrefix} {
		if err := l.deleteByPrefix(ctx, prefix); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) deleteByPrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := l.rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan failed for %q: %w", prefix, err)
		}
		if len(keys) > 0 {
			if err := l.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete failed for %q: %w", prefix, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// --- Tracked apps ---

func (l *Ledger) ListApps(ctx context.Context) ([]domain.TrackedApp, error) {
	raw, err := l.rdb.HGetAll(ctx, keyApps).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}

	apps := make([]domain.TrackedApp, 0, len(raw))
	for pkg, doc := range raw {
		var app domain.TrackedApp
		if err := json.Unmarshal([]byte(doc), &app); err != nil {
			slog.Warn("Dropping malformed tracked app record", "package_name", pkg, "error", err)
			continue
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (l *Ledger) GetApp(ctx context.Context, packageName string) (*domain.TrackedApp, error) {
	doc, err := l.rdb.HGet(ctx, keyApps, packageName).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrAppNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app: %w", err)
	}

	var app domain.TrackedApp
	if err := json.Unmarshal([]byte(doc), &app); err != nil {
		slog.Warn("Malformed tracked app record treated as absent", "package_name", packageName, "error", err)
		return nil, domain.ErrAppNotFound
	}
	return &app, nil
}

func (l *Ledger) AddApp(ctx context.Context, app domain.TrackedApp) error {
	exists, err := l.rdb.HExists(ctx, keyApps, app.PackageName).Result()
	if err != nil {
		return fmt.Errorf("failed to check app existence: %w", err)
	}
	if exists {
		return domain.ErrAppAlreadyTracked
	}

	count, err := l.rdb.HLen(ctx, keyApps).Result()
	if err != nil {
		return fmt.Errorf("failed to count apps: %w", err)
	}
	if count >= domain.MaxTrackedApps {
		return domain.ErrTooManyApps
	}

	doc, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("failed to marshal app: %w", err)
	}
	return l.rdb.HSet(ctx, keyApps, app.PackageName, string(doc)).Err()
}

func (l *Ledger) RemoveApp(ctx context.Context, packageName string) error {
	removed, err := l.rdb.HDel(ctx, keyApps, packageName).Result()
	if err != nil {
		return fmt.Errorf("failed to remove app: %w", err)
	}
	if removed == 0 {
		return domain.ErrAppNotFound
	}
	return nil
}

func (l *Ledger) UpdateAppLimit(ctx context.Context, packageName string, timeLimitMinutes int) error {
	app, err := l.GetApp(ctx, packageName)
	if err != nil {
		return err
	}
	app.TimeLimitMinutes = timeLimitMinutes

	doc, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("failed to marshal app: %w", err)
	}
	return l.rdb.HSet(ctx, keyApps, packageName, string(doc)).Err()
}

// --- Daily usage ---

func (l *Ledger) GetDailyUsage(ctx context.Context, date string) (*domain.DailyUsageRecord, error) {
	doc, err := l.rdb.Get(ctx, usageKey(date)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily usage: %w", err)
	}

	var rec domain.DailyUsageRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		slog.Warn("Malformed daily usage record treated as absent", "date", date, "error", err)
		return nil, nil
	}
	if rec.PerApp == nil {
		rec.PerApp = make(map[string]int64)
	}
	return &rec, nil
}

func (l *Ledger) SaveDailyUsage(ctx context.Context, record domain.DailyUsageRecord) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal daily usage: %w", err)
	}
	return l.rdb.Set(ctx, usageKey(record.Date), string(doc), 0).Err()
}

// --- Breaks ---

func (l *Ledger) AppendBreak(ctx context.Context, rec domain.BreakRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal break record: %w", err)
	}
	date := domain.LocalDate(rec.OccurredAt)
	return l.rdb.RPush(ctx, breakKey(date), string(doc)).Err()
}

func (l *Ledger) ListBreaks(ctx context.Context, date string) ([]domain.BreakRecord, error) {
	docs, err := l.rdb.LRange(ctx, breakKey(date), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list breaks: %w", err)
	}

	breaks := make([]domain.BreakRecord, 0, len(docs))
	for _, doc := range docs {
		var rec domain.BreakRecord
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			slog.Warn("Dropping malformed break record", "date", date, "error", err)
			continue
		}
		breaks = append(breaks, rec)
	}
	return breaks, nil
}

// --- Settings ---

func (l *Ledger) GetSettings(ctx context.Context) (domain.Settings, error) {
	doc, err := l.rdb.Get(ctx, keySettings).Result()
	if errors.Is(err, goredis.Nil) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.DefaultSettings(), fmt.Errorf("failed to get settings: %w", err)
	}

	var settings domain.Settings
	if err := json.Unmarshal([]byte(doc), &settings); err != nil {
		slog.Warn("Malformed settings treated as defaults", "error", err)
		return domain.DefaultSettings(), nil
	}
	return settings, nil
}

func (l *Ledger) SaveSettings(ctx context.Context, settings domain.Settings) error {
	doc, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return l.rdb.Set(ctx, keySettings, string(doc), 0).Err()
}

// --- Maintenance ---

// PruneOlderThan removes usage and break records for days before the cutoff.
// Date keys are YYYY-MM-DD, so a lexicographic compare is a date compare.
func (l *Ledger) PruneOlderThan(ctx context.Context, daysToKeep int) error {
	cutoff := domain.LocalDate(l.clock.Now().AddDate(0, 0, -daysToKeep))

	pruned := 0
	for _, prefix := range []string{usageKeyPrefix, breakKeyPrefix} {
		var cursor uint64
		for {
			keys, next, err := l.rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
			if err != nil {
				return fmt.Errorf("prune scan failed: %w", err)
			}

			var stale []string
			for _, key := range keys {
				if strings.TrimPrefix(key, prefix) < cutoff {
					stale = append(stale, key)
				}
			}
			if len(stale) > 0 {
				if err := l.rdb.Del(ctx, stale...).Err(); err != nil {
					return fmt.Errorf("prune delete failed: %w", err)
				}
				pruned += len(stale)
			}

			cursor = next
			if cursor == 0 {
				break
			}
		}
	}

	if pruned > 0 {
		slog.Info("Pruned old ledger records", "records", pruned, "cutoff", cutoff)
	}
	return nil
}

func usageKey(date string) string {
	return usageKeyPrefix + date
}

func breakKey(date string) string {
	return breakKeyPrefix + date
}
