package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Poller runs a refresh function on a fixed interval for as long as a
// view is active. The view owns the lifetime: Start returns a stop
// function that must be called on teardown, and cancelling the context
// stops the loop as well — no orphaned timers either way.
type Poller struct {
	interval time.Duration
	refresh  func(context.Context)
	logger   *zap.Logger
}

// NewPoller creates a poller around refresh.
func NewPoller(interval time.Duration, refresh func(context.Context), logger *zap.Logger) *Poller {
	return &Poller{interval: interval, refresh: refresh, logger: logger}
}

// Start runs an immediate refresh and then ticks until stopped. The
// returned stop function is idempotent.
func (p *Poller) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		p.refresh(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Debug("poller stopped")
				return
			case <-ticker.C:
				p.refresh(ctx)
			}
		}
	}()

	return cancel
}
