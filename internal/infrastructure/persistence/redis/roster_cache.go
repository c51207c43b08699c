package redis

import (
	"context"
	"errors"
	"time"

	"github.com/alem-hub/student-insights/internal/domain/student"
	"github.com/alem-hub/student-insights/pkg/logger"
	"github.com/alem-hub/student-insights/pkg/timeutil"
)

// snapshotVersion changes whenever the encoded Student layout does; older
// snapshots are then treated as misses.
const snapshotVersion = 1

// SnapshotStore is the subset of Cache used by RosterCache.
type SnapshotStore interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

var _ SnapshotStore = (*Cache)(nil)

type rosterSnapshot struct {
	Version  int               `json:"version"`
	CachedAt time.Time         `json:"cachedAt"`
	Students []student.Student `json:"students"`
}

// RosterCache serves the roster from a Redis snapshot and falls back to the
// wrapped source on a miss. Cache failures never fail a load.
type RosterCache struct {
	source student.Source
	store  SnapshotStore
	key    string
	ttl    time.Duration
	log    *logger.Logger
}

// NewRosterCache wraps source. name distinguishes snapshots of different sources.
func NewRosterCache(source student.Source, store SnapshotStore, name string, ttl time.Duration, log *logger.Logger) *RosterCache {
	if ttl <= 0 {
		ttl = TTLRosterSnapshot
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RosterCache{
		source: source,
		store:  store,
		key:    RosterSnapshotKey(name),
		ttl:    ttl,
		log:    log.With(logger.Component("roster_cache")),
	}
}

var _ student.Source = (*RosterCache)(nil)

// LoadStudents returns the cached roster or loads and caches it.
func (c *RosterCache) LoadStudents(ctx context.Context) ([]student.Student, error) {
	var snap rosterSnapshot
	err := c.store.Get(ctx, c.key, &snap)
	switch {
	case err == nil && snap.Version == snapshotVersion && snap.Students != nil:
		c.log.Debug("roster cache hit",
			logger.RosterSize(len(snap.Students)),
			logger.String("cached_at", snap.CachedAt.Format(time.RFC3339)))
		return snap.Students, nil
	case err == nil:
		c.log.Debug("roster cache stale", logger.Int("version", snap.Version))
	case errors.Is(err, ErrCacheMiss):
		c.log.Debug("roster cache miss")
	default:
		c.log.Warn("roster cache read failed", logger.Err(err))
	}

	students, err := c.source.LoadStudents(ctx)
	if err != nil {
		return nil, err
	}

	snap = rosterSnapshot{
		Version:  snapshotVersion,
		CachedAt: timeutil.Now(),
		Students: students,
	}
	if err := c.store.Set(ctx, c.key, snap, c.ttl); err != nil {
		c.log.Warn("roster cache write failed", logger.Err(err))
	}

	out := make([]student.Student, len(students))
	copy(out, students)
	return out, nil
}

// Invalidate drops the snapshot so the next load goes to the source.
func (c *RosterCache) Invalidate(ctx context.Context) error {
	return c.store.Delete(ctx, c.key)
}
