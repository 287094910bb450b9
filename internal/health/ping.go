package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthPinger can be implemented by components to expose a specialized
// health check. HealthPing must return nil when the component is healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}

// PingChecker probes a HealthPinger on an interval and caches the result.
type PingChecker struct {
	name         string
	target       HealthPinger
	healthy      atomic.Int32
	probed       atomic.Bool
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewPingChecker starts unhealthy until the first successful probe.
func NewPingChecker(name string, target HealthPinger, log zerolog.Logger, probeTimeout time.Duration) *PingChecker {
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	return &PingChecker{name: name, target: target, log: log, probeTimeout: probeTimeout}
}

func (p *PingChecker) Name() string { return p.name }

// IsHealthy returns the cached health status (non-blocking).
func (p *PingChecker) IsHealthy() bool { return p.healthy.Load() == 1 }

// Start begins periodic health checking.
func (p *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.check(ctx)
		}
	}
}

// check logs only on transitions so a flapping store does not flood the log.
func (p *PingChecker) check(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	err := p.target.HealthPing(checkCtx)
	was := p.healthy.Load() == 1
	if err != nil {
		p.healthy.Store(0)
		if was || !p.probed.Swap(true) {
			p.log.Error().Stack().Err(err).Str("checker", p.name).Msg("health probe failed")
		}
		return
	}
	p.probed.Store(true)
	p.healthy.Store(1)
	if !was {
		p.log.Info().Str("checker", p.name).Msg("health probe healthy")
	}
}
