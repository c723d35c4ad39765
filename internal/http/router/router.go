package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/delaydex/delaydex-backend/internal/http/handlers"
	"github.com/delaydex/delaydex-backend/internal/http/middleware"
	"github.com/delaydex/delaydex-backend/internal/logx"
)

// requestTimeout bounds one request end to end: up to three sequential
// provider calls plus an optional chain write.
const requestTimeout = 60 * time.Second

// New constructs a chi-based http.Handler with base middleware and routes.
func New(h *handlers.Handlers, logger logx.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS)
	r.Use(middleware.Observability(logger))
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/resolve", h.Resolve)
	r.Get("/flight-status", h.FlightStatus)
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.NotFound(http.HandlerFunc(h.NotFound))

	return r
}
