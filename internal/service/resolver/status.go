package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/delaydex/delaydex-backend/internal/apperr"
	"github.com/delaydex/delaydex-backend/internal/domain"
)

// StatusReport is the read-only answer of a /flight-status check. It carries
// best-effort delay and status without touching the chain.
type StatusReport struct {
	FlightNumber       string
	OriginCode         string
	ScheduledDeparture string
	DelayMinutes       int
	Status             string
	LastUpdated        time.Time
	Flight             *domain.FlightMatch
}

// FlightStatus runs the provider cascade for a status check. No outcome is
// classified against market thresholds and nothing is written anywhere.
func (r *Resolver) FlightStatus(ctx context.Context, req domain.ResolutionRequest) (*StatusReport, error) {
	if missing := req.MissingForStatus(); len(missing) > 0 {
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

	status := "scheduled"
	if match != nil {
		if delay > 0 {
			status = "delayed"
		} else {
			status = "on-time"
		}
	}
	return &StatusReport{
		FlightNumber:       req.Callsign(),
		OriginCode:         req.OriginCode,
		ScheduledDeparture: req.ScheduledDeparture,
		DelayMinutes:       delay,
		Status:             status,
		LastUpdated:        r.clk.Now(),
		Flight:             match,
	}, nil
}
