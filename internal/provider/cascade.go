package provider

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/delaydex/delaydex-backend/internal/domain"
	"github.com/delaydex/delaydex-backend/internal/logx"
)

const defaultCallTimeout = 10 * time.Second

// Cascade walks providers strictly in priority order: the first usable match
// short-circuits the chain. Calls are sequential, not concurrent — a later
// provider must not be queried once an earlier one answered, to respect
// provider rate limits and keep the result deterministic.
type Cascade struct {
	providers []Provider
	logger    logx.Logger
	timeout   time.Duration
	requests  *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

// NewCascade builds a cascade over the given providers. The counter vecs may
// be nil. A non-positive timeout falls back to the default per-call bound.
func NewCascade(providers []Provider, logger logx.Logger, timeout time.Duration, requests, failures *prometheus.CounterVec) *Cascade {
	if logger == nil {
		logger = logx.Nop()
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Cascade{
		providers: providers,
		logger:    logger,
		timeout:   timeout,
		requests:  requests,
		failures:  failures,
	}
}

// Match tries each provider in order. Provider failures are absorbed (logged
// and counted) and the chain proceeds; only a cancellation of the caller's
// context escalates. (nil, 0, nil) means all providers were exhausted
// without a usable record.
func (c *Cascade) Match(ctx context.Context, q Query) (*domain.FlightMatch, int, error) {
	for _, p := range c.providers {
		if !p.Available() {
			c.logger.Debug("provider skipped: credential not configured",
				logx.String("provider", p.Name()))
			continue
		}
		if c.requests != nil {
			c.requests.WithLabelValues(p.Name()).Inc()
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		match, delay, err := p.TryMatch(callCtx, q)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			if c.failures != nil {
				c.failures.WithLabelValues(p.Name()).Inc()
			}
			c.logger.Warn("provider failed, trying next",
				logx.String("provider", p.Name()),
				logx.Err(err),
			)
			continue
		}
		if match != nil {
			c.logger.Info("flight matched",
				logx.String("provider", p.Name()),
				logx.String("callsign", q.Callsign),
				logx.Int("delay_minutes", delay),
			)
			return match, delay, nil
		}
	}
	return nil, 0, nil
}
