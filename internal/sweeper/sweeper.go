// Package sweeper runs the overdue sweep on a fixed periodic schedule.
// It is the only component with built-in resilience: a failing sweep is
// logged and the loop simply waits for the next tick - no retry, no
// backoff, no crash.
package sweeper

import (
	"context"
	"log/slog"
	"time"
)

// Lifecycle is the slice of the invoice service the sweeper drives.
type Lifecycle interface {
	SweepOverdue(ctx context.Context) (int, error)
}

// DefaultInterval matches the original daily schedule.
const DefaultInterval = 24 * time.Hour

// tickTimeout bounds a single sweep so a wedged database cannot stall
// the loop past the next tick.
const tickTimeout = 5 * time.Minute

// Sweeper periodically advances overdue invoices.
type Sweeper struct {
	svc      Lifecycle
	interval time.Duration
}

// New builds a Sweeper. A non-positive interval falls back to
// DefaultInterval.
func New(svc Lifecycle, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{svc: svc, interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is
// cancelled. It never returns a sweep error; failures are observed
// again at the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	slog.Info("overdue sweeper started", "interval", s.interval)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("overdue sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, tickTimeout)
	defer cancel()

	count, err := s.svc.SweepOverdue(tickCtx)
	if err != nil {
		slog.Error("overdue sweep failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("overdue sweep examined candidates", "count", count)
	}
}
