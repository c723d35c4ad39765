package handlers

import (
	"errors"
	"net/http"

	"github.com/delaydex/delaydex-backend/internal/apperr"
	"github.com/delaydex/delaydex-backend/internal/domain"
	"github.com/delaydex/delaydex-backend/internal/logx"
)

// Resolve handles GET /resolve: it resolves a market's flight outcome and,
// when the chain writer is configured, submits it on-chain.
func (h *Handlers) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := domain.ResolutionRequest{
		MarketID:           q.Get("marketId"),
		OriginCode:         q.Get("originCode"),
		AirlineCode:        q.Get("airlineCode"),
		FlightNumber:       q.Get("flightNumber"),
		ScheduledDeparture: q.Get("date"),
	}

	res, err := h.resolver.Resolve(r.Context(), req)

	var mp *apperr.MissingParams
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, resolveResponse{
			MarketID: res.MarketID,
			Flight:   rawFlight(res.Flight),
			Outcome:  res.Outcome,
			Blockchain: blockchainStatus{
				Chain:     res.Submission.Chain,
				TxHash:    txHashPtr(res.Submission),
				Submitted: res.Submission.Submitted,
			},
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
	case errors.Is(err, apperr.Submission):
		// res still carries the computed outcome; surface it so the caller
		// can retry out-of-band.
		writeJSON(w, r, http.StatusInternalServerError, submissionFailureResponse{
			Error:    "Blockchain submission failed",
			Message:  err.Error(),
			MarketID: res.MarketID,
			Outcome:  res.Outcome,
			Flight:   rawFlight(res.Flight),
		})
	default:
		h.logger.Error("resolve failed", logx.String("market_id", req.MarketID), logx.Err(err))
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
	}
}
