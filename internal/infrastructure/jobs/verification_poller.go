package jobs

import (
	"context"
	"sync"
	"time"

	"blip.dashboard/internal/usecases"
	"blip.dashboard/pkg/logger"
)

// VerificationPoller runs a tick function on a fixed interval until stopped.
type VerificationPoller struct {
	tick     func(ctx context.Context)
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func NewVerificationPoller(interval time.Duration, tick func(ctx context.Context)) *VerificationPoller {
	return &VerificationPoller{
		tick:     tick,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// NewPollerFactory adapts NewVerificationPoller to usecases.PollerFactory.
func NewPollerFactory() usecases.PollerFactory {
	return func(interval time.Duration, tick func(ctx context.Context)) usecases.Poller {
		return NewVerificationPoller(interval, tick)
	}
}

func (j *VerificationPoller) Start(ctx context.Context) {
	logger.Debug(ctx, "Starting verification poller")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug(ctx, "Verification poller stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Debug(ctx, "Verification poller stopped")
			return
		case <-ticker.C:
			j.tick(ctx)
		}
	}
}

// Stop is safe to call more than once.
func (j *VerificationPoller) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}
