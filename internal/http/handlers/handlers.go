package handlers

import (
	"net/http"
	"time"

	"github.com/delaydex/delaydex-backend/internal/clock"
	"github.com/delaydex/delaydex-backend/internal/logx"
)

const serviceName = "delaydex-backend"

// Handlers serves the resolution endpoints.
type Handlers struct {
	resolver  Resolver
	clk       clock.Clock
	logger    logx.Logger
	chainName string
}

// New wires the resolver use case into HTTP handlers.
func New(resolver Resolver, clk clock.Clock, logger logx.Logger, chainName string) *Handlers {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Handlers{resolver: resolver, clk: clk, logger: logger, chainName: chainName}
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: h.clk.Now().Format(time.RFC3339),
		Service:   serviceName,
		Chain:     h.chainName,
	})
}

// NotFound returns a JSON 404 for unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "Not found"})
}
