package memory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	robfigcron "github.com/robfig/cron/v3"
)

// Sweeper periodically evicts conversations that have been idle longer
// than the TTL, bounding per-user state over the process lifetime.
// Schedule is a standard 5-field cron expression; descriptors like
// "@every 10m" also work.
type Sweeper struct {
	store    *Store
	ttl      time.Duration
	schedule string
	cron     *robfigcron.Cron
}

// NewSweeper creates a Sweeper. ttl defaults to 60 minutes and schedule to
// "@every 10m" when unset.
func NewSweeper(store *Store, ttl time.Duration, schedule string) *Sweeper {
	if ttl <= 0 {
		ttl = 60 * time.Minute
	}
	if schedule == "" {
		schedule = "@every 10m"
	}
	return &Sweeper{
		store:    store,
		ttl:      ttl,
		schedule: schedule,
		cron:     robfigcron.New(),
	}
}

// Start arms the schedule and blocks until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.store.EvictIdle(time.Now().Add(-s.ttl))
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	slog.Info("memory: eviction sweeper started", "ttl", s.ttl, "schedule", s.schedule)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	slog.Info("memory: eviction sweeper stopped")
	return ctx.Err()
}
