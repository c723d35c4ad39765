package domain

import (
	"strings"
	"time"
)

// ResolutionRequest carries the market parameters of one resolve call.
// The market identifier is opaque and passed through unmodified.
type ResolutionRequest struct {
	MarketID           string
	OriginCode         string
	AirlineCode        string
	FlightNumber       string
	ScheduledDeparture string
}

// Callsign returns the expected flight designator (airline code + number),
// upper-cased for case-insensitive matching against provider records.
func (r ResolutionRequest) Callsign() string {
	return strings.ToUpper(r.AirlineCode + r.FlightNumber)
}

// MissingForResolve lists the /resolve query parameters that are absent.
func (r ResolutionRequest) MissingForResolve() []string {
	var missing []string
	if strings.TrimSpace(r.MarketID) == "" {
		missing = append(missing, "marketId")
	}
	if strings.TrimSpace(r.OriginCode) == "" {
		missing = append(missing, "originCode")
	}
	if strings.TrimSpace(r.ScheduledDeparture) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(r.AirlineCode) == "" {
		missing = append(missing, "airlineCode")
	}
	if strings.TrimSpace(r.FlightNumber) == "" {
		missing = append(missing, "flightNumber")
	}
	return missing
}

// MissingForStatus lists the /flight-status query parameters that are absent.
// The market identifier is not required for a read-only status check.
func (r ResolutionRequest) MissingForStatus() []string {
	var missing []string
	if strings.TrimSpace(r.OriginCode) == "" {
		missing = append(missing, "originCode")
	}
	if strings.TrimSpace(r.AirlineCode) == "" {
		missing = append(missing, "airlineCode")
	}
	if strings.TrimSpace(r.FlightNumber) == "" {
		missing = append(missing, "flightNumber")
	}
	if strings.TrimSpace(r.ScheduledDeparture) == "" {
		missing = append(missing, "scheduledDeparture")
	}
	return missing
}

// scheduledLayouts are accepted after space-to-T normalization. Timestamps
// without a zone are interpreted as UTC.
var scheduledLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseScheduled parses a scheduled departure string. A space between date
// and time is accepted in place of the RFC 3339 "T" separator.
func ParseScheduled(s string) (time.Time, error) {
	normalized := strings.Replace(strings.TrimSpace(s), " ", "T", 1)
	var lastErr error
	for _, layout := range scheduledLayouts {
		t, err := time.Parse(layout, normalized)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
