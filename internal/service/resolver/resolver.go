package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/delaydex/delaydex-backend/internal/apperr"
	"github.com/delaydex/delaydex-backend/internal/clock"
	"github.com/delaydex/delaydex-backend/internal/domain"
	"github.com/delaydex/delaydex-backend/internal/logx"
	"github.com/delaydex/delaydex-backend/internal/provider"
)

// Resolver turns flight facts into a market outcome. It holds no state
// between requests; every resolve performs its own provider queries.
type Resolver struct {
	matcher     Matcher
	writer      ChainWriter
	clk         clock.Clock
	logger      logx.Logger
	chainName   string
	submissions *prometheus.CounterVec
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWriter enables chain submission through the given collaborator.
func WithWriter(w ChainWriter) Option {
	return func(r *Resolver) { r.writer = w }
}

// WithSubmissionsCounter records submission results, labelled ok/error.
func WithSubmissionsCounter(c *prometheus.CounterVec) Option {
	return func(r *Resolver) { r.submissions = c }
}

// New creates a Resolver over the provider cascade. Submission stays
// disabled unless WithWriter is applied.
func New(matcher Matcher, clk clock.Clock, logger logx.Logger, chainName string, opts ...Option) *Resolver {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if logger == nil {
		logger = logx.Nop()
	}
	r := &Resolver{
		matcher:   matcher,
		clk:       clk,
		logger:    logger,
		chainName: chainName,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve validates the request, walks the provider cascade, classifies the
// outcome, and (when configured) submits it to the market contract.
//
// When the chain write fails, the returned result still carries the computed
// outcome and matched flight alongside the error, so the caller can retry
// submission out-of-band.
func (r *Resolver) Resolve(ctx context.Context, req domain.ResolutionRequest) (*domain.ResolutionResult, error) {
	if missing := req.MissingForResolve(); len(missing) > 0 {
		return nil, &apperr.MissingParams{Required: missing}
	}
	scheduled, err := domain.ParseScheduled(req.ScheduledDeparture)
	if err != nil {
		return nil, fmt.Errorf("parse scheduled departure %q: %w", req.ScheduledDeparture, apperr.Invalid)
	}

	match, delay, err := r.matcher.Match(ctx, queryFrom(req, scheduled))
	if err != nil {
		return nil, err
	}

	outcome := domain.Classify(match, delay)
	if match == nil {
		outcome, delay = r.InferOutcomeWithoutData(scheduled)
	}

	result := &domain.ResolutionResult{
		MarketID:     req.MarketID,
		Flight:       match,
		Outcome:      outcome,
		DelayMinutes: delay,
		Submission:   domain.Submission{Chain: r.chainName},
	}

	if r.writer == nil {
		r.logger.Warn("chain writer not configured, skipping submission",
			logx.String("market_id", req.MarketID))
		return result, nil
	}

	txHash, err := r.writer.CloseMarket(ctx, req.MarketID, outcome)
	if err != nil {
		if r.submissions != nil {
			r.submissions.WithLabelValues("error").Inc()
		}
		r.logger.Error("chain submission failed",
			logx.String("market_id", req.MarketID),
			logx.String("outcome", outcome.String()),
			logx.Err(err),
		)
		return result, fmt.Errorf("%w: %v", apperr.Submission, err)
	}
	if r.submissions != nil {
		r.submissions.WithLabelValues("ok").Inc()
	}
	result.Submission.TxHash = txHash
	result.Submission.Submitted = true
	return result, nil
}

// InferOutcomeWithoutData is the no-data policy: when no provider produced a
// match, a flight whose scheduled departure already passed is assumed
// slightly delayed, with the elapsed time as the delay; a future flight
// stays pending.
//
// This is a best-effort heuristic, not a guarantee — it trades resolution
// availability for accuracy when provider coverage is missing.
func (r *Resolver) InferOutcomeWithoutData(scheduled time.Time) (domain.Outcome, int) {
	now := r.clk.Now()
	if scheduled.After(now) {
		return domain.OutcomePending, 0
	}
	return domain.OutcomeDelayedShort, int(now.Sub(scheduled) / time.Minute)
}

func queryFrom(req domain.ResolutionRequest, scheduled time.Time) provider.Query {
	return provider.Query{
		Callsign:     req.Callsign(),
		Origin:       req.OriginCode,
		Airline:      req.AirlineCode,
		FlightNumber: req.FlightNumber,
		ScheduledAt:  scheduled,
		Date:         scheduled.Format("2006-01-02"),
	}
}
