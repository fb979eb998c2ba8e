package core

// scheduler.go runs background maintenance for the job registry.
//
// Finished jobs stay queryable for the configured retention and are then
// purged, so an in-memory registry does not grow without bound in a
// long-running server.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often the retention sweeper runs.
const DefaultSweepInterval = 10 * time.Minute

// StartRetentionSweeper purges finished jobs older than the retention every
// interval until ctx is cancelled. It runs once immediately.
func (s *Service) StartRetentionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("retention sweeper started",
		"retention", s.retention.String(),
		"interval", interval.String(),
	)

	s.sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep performs one purge pass.
func (s *Service) sweep() int {
	n := purgeFinished(s.reg, time.Now().Add(-s.retention))
	if n > 0 {
		slog.Info("purged finished jobs", "jobs", n)
	}
	return n
}
