package queue

import (
	"context"
	"log/slog"
	"time"

	"queuedremove/internal/metrics"
)

// Sweeper drives the eviction schedule: a fixed-period timer that runs one
// sweep pass per tick. Run blocks until ctx is cancelled; cancellation stops
// the timer before the next tick, while an in-flight pass runs to completion
// so the queue is never left mid-mutation.
type Sweeper struct {
	Manager  *Manager
	Logger   *slog.Logger
	Interval time.Duration
}

func (s Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s Sweeper) tick(ctx context.Context) {
	s.Logger.Debug("checking remaining disk space")
	result, err := s.Manager.Sweep(ctx)
	if err != nil {
		metrics.SweepFailuresTotal.Inc()
		s.Logger.Warn("sweep pass failed", slog.String("error", err.Error()))
		return
	}

	metrics.SweepRunsTotal.Inc()
	metrics.FreeSpaceBytes.Set(float64(result.FreeBytes))
	if !result.Triggered {
		return
	}

	metrics.TorrentsEvictedTotal.Add(float64(result.TorrentsEvicted))
	metrics.EstimatedFreedBytesTotal.Add(float64(result.EstimatedFreedBytes))
	s.Logger.Info("sweep pass finished",
		slog.Int("groupsEvicted", result.GroupsEvicted),
		slog.Int("torrentsEvicted", result.TorrentsEvicted),
		slog.Int64("estimatedFreedBytes", result.EstimatedFreedBytes),
	)
}
