package handlers

import (
	"encoding/json"

	"github.com/delaydex/delaydex-backend/internal/domain"
)

type missingParamsResponse struct {
	Error    string   `json:"error"`
	Required []string `json:"required"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type blockchainStatus struct {
	Chain     string  `json:"chain"`
	TxHash    *string `json:"txHash"`
	Submitted bool    `json:"submitted"`
}

type resolveResponse struct {
	MarketID   string           `json:"marketId"`
	Flight     json.RawMessage  `json:"flight"`
	Outcome    domain.Outcome   `json:"outcome"`
	Blockchain blockchainStatus `json:"blockchain"`
}

// submissionFailureResponse keeps the computed outcome and matched flight in
// the failure body so the caller can retry submission out-of-band.
type submissionFailureResponse struct {
	Error    string          `json:"error"`
	Message  string          `json:"message"`
	MarketID string          `json:"marketId"`
	Outcome  domain.Outcome  `json:"outcome"`
	Flight   json.RawMessage `json:"flight"`
}

type flightStatusResponse struct {
	FlightNumber       string          `json:"flightNumber"`
	OriginCode         string          `json:"originCode"`
	ScheduledDeparture string          `json:"scheduledDeparture"`
	DelayMinutes       int             `json:"delayMinutes"`
	Status             string          `json:"status"`
	LastUpdated        string          `json:"lastUpdated"`
	FlightData         json.RawMessage `json:"flightData"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Chain     string `json:"chain"`
}

// rawFlight extracts the provider's original record, null when unmatched.
func rawFlight(m *domain.FlightMatch) json.RawMessage {
	if m == nil {
		return nil
	}
	if len(m.Raw) > 0 {
		return m.Raw
	}
	// Providers always set Raw; fall back to the structured form if one did not.
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return b
}

func txHashPtr(s domain.Submission) *string {
	if !s.Submitted {
		return nil
	}
	h := s.TxHash
	return &h
}
