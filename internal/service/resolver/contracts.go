package resolver

import (
	"context"

	"github.com/delaydex/delaydex-backend/internal/domain"
	"github.com/delaydex/delaydex-backend/internal/provider"
)

// Matcher runs the provider fallback cascade for one request.
type Matcher interface {
	Match(ctx context.Context, q provider.Query) (*domain.FlightMatch, int, error)
}

// ChainWriter is the external contract collaborator that persists a resolved
// outcome. Nil disables submission.
type ChainWriter interface {
	CloseMarket(ctx context.Context, marketID string, outcome domain.Outcome) (txHash string, err error)
}
