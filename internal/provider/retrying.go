package provider

import (
	"context"
	"errors"
	"time"

	"github.com/delaydex/delaydex-backend/internal/domain"
	"github.com/delaydex/delaydex-backend/internal/logx"
)

type counter interface {
	Inc()
}

// RetryConfig describes the retry behaviour for transient provider failures.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Retrying wraps a Provider and retries transient failures with capped
// exponential backoff before the cascade gives the provider up.
type Retrying struct {
	next    Provider
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetrying decorates next with retry behaviour; returns nil when next is nil.
func NewRetrying(next Provider, logger logx.Logger, retries counter, cfg RetryConfig) *Retrying {
	if next == nil {
		return nil
	}
	if logger == nil {
		logger = logx.Nop()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Retrying{next: next, logger: logger, retries: retries, cfg: cfg}
}

// Name reports the wrapped provider's name.
func (r *Retrying) Name() string { return r.next.Name() }

// Available reports the wrapped provider's availability.
func (r *Retrying) Available() bool { return r.next.Available() }

// TryMatch calls the wrapped provider, retrying transient failures.
func (r *Retrying) TryMatch(ctx context.Context, q Query) (*domain.FlightMatch, int, error) {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		match, delay, err := r.next.TryMatch(ctx, q)
		if err == nil {
			return match, delay, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == r.cfg.MaxAttempts || !isRetryable(err) {
			break
		}
		wait := backoff(r.cfg.BaseDelay, r.cfg.MaxDelay, attempt)
		if r.retries != nil {
			r.retries.Inc()
		}
		r.logger.Warn("provider retry",
			logx.String("provider", r.next.Name()),
			logx.Int("attempt", attempt),
			logx.Duration("backoff", wait),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, wait) {
			break
		}
	}
	return nil, 0, lastErr
}

// isRetryable reports whether the failure is worth another attempt.
func isRetryable(err error) bool {
	return errors.Is(err, Transient) || errors.Is(err, context.DeadlineExceeded)
}

// backoff computes the capped exponential retry delay.
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

var _ Provider = (*Retrying)(nil)
