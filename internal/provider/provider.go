package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/delaydex/delaydex-backend/internal/apperr"
	"github.com/delaydex/delaydex-backend/internal/domain"
)

// Query carries the per-request values derived from a resolution request.
type Query struct {
	// Callsign is the expected designator (airline code + flight number),
	// upper-case.
	Callsign     string
	Origin       string
	Airline      string
	FlightNumber string
	ScheduledAt  time.Time
	// Date is the departure date (YYYY-MM-DD) for historical lookups.
	Date string
}

// Provider is one external flight-data source in the fallback cascade.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Available reports whether the provider's required credential is
	// configured. Unavailable providers are skipped, never errored.
	Available() bool
	// TryMatch queries the provider and returns the matched record and the
	// delay in minutes. (nil, 0, nil) means the provider was reachable but
	// holds no matching flight.
	TryMatch(ctx context.Context, q Query) (*domain.FlightMatch, int, error)
}

// Transient marks provider failures worth retrying (network errors, 5xx).
var Transient = errors.New("transient provider failure")

const maxResponseBody = 4 << 20

// fetchJSON performs a GET and decodes the JSON body into out. Transport
// errors and 5xx responses are marked Transient; other non-success responses
// and undecodable bodies wrap apperr.Unavailable.
func fetchJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", Transient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", Transient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %w", resp.StatusCode, apperr.Unavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", Transient, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", apperr.Unavailable)
	}
	return nil
}

func httpClientOrDefault(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return http.DefaultClient
}
