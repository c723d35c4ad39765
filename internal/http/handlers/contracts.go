package handlers

import (
	"context"

	"github.com/delaydex/delaydex-backend/internal/domain"
	"github.com/delaydex/delaydex-backend/internal/service/resolver"
)

// Resolver is the use case behind the resolution endpoints.
type Resolver interface {
	Resolve(ctx context.Context, req domain.ResolutionRequest) (*domain.ResolutionResult, error)
	FlightStatus(ctx context.Context, req domain.ResolutionRequest) (*resolver.StatusReport, error)
}
