package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// FlightMatch is one observed flight record from an external provider.
// It is read once per request and discarded; nothing caches or persists it.
type FlightMatch struct {
	// Source names the provider that produced the record.
	Source string

	// Callsign or IATA designator as reported by the provider.
	Callsign string

	// Status is the provider's flight status flag, when present.
	Status string

	// FirstSeen/LastSeen are observed contact timestamps (window-scan providers).
	FirstSeen time.Time
	LastSeen  time.Time

	// Scheduled/Estimated are explicit departure timestamps (schedule providers).
	Scheduled time.Time
	Estimated time.Time

	// Raw is the provider's original JSON record, passed through to the caller.
	Raw json.RawMessage
}

// Cancelled reports whether the provider status marks the flight cancelled.
// Providers report either a literal "cancelled" or the IATA status code "C".
func (m *FlightMatch) Cancelled() bool {
	if m == nil {
		return false
	}
	s := strings.TrimSpace(m.Status)
	return strings.EqualFold(s, "cancelled") || strings.EqualFold(s, "C")
}
