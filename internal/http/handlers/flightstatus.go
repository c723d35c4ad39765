package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/delaydex/delaydex-backend/internal/apperr"
	"github.com/delaydex/delaydex-backend/internal/domain"
	"github.com/delaydex/delaydex-backend/internal/logx"
)

// FlightStatus handles GET /flight-status: a read-only best-effort delay
// check that never writes anything.
func (h *Handlers) FlightStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := domain.ResolutionRequest{
		OriginCode:         q.Get("originCode"),
		AirlineCode:        q.Get("airlineCode"),
		FlightNumber:       q.Get("flightNumber"),
		ScheduledDeparture: q.Get("scheduledDeparture"),
	}

	rep, err := h.resolver.FlightStatus(r.Context(), req)

	var mp *apperr.MissingParams
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, flightStatusResponse{
			FlightNumber:       rep.FlightNumber,
			OriginCode:         rep.OriginCode,
			ScheduledDeparture: rep.ScheduledDeparture,
			DelayMinutes:       rep.DelayMinutes,
			Status:             rep.Status,
			LastUpdated:        rep.LastUpdated.Format(time.RFC3339),
			FlightData:         rawFlight(rep.Flight),
		})
	case errors.As(err, &mp):
		writeJSON(w, r, http.StatusBadRequest, missingParamsResponse{
			Error:    "Missing required parameters",
			Required: mp.Required,
		})
	case errors.Is(err, apperr.Invalid):
		writeJSON(w, r, http.StatusBadRequest, errorResponse{
			Error:   "Invalid parameters",
			Message: err.Error(),
		})
	default:
		h.logger.Error("flight status failed", logx.Err(err))
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
	}
}
