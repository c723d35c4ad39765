package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/delaydex/delaydex-backend/internal/domain"
)

const aviationStackDefaultBaseURL = "http://api.aviationstack.com/v1"

// AviationStack is the by-identifier provider: it queries directly by flight
// IATA code and origin and takes the first returned record. Requires an API
// key; absent key disables the provider.
type AviationStack struct {
	baseURL string
	key     string
	client  *http.Client
}

// NewAviationStack creates an AviationStack provider. An empty baseURL
// selects the public endpoint.
func NewAviationStack(client *http.Client, baseURL, key string) *AviationStack {
	if baseURL == "" {
		baseURL = aviationStackDefaultBaseURL
	}
	return &AviationStack{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		client:  httpClientOrDefault(client),
	}
}

// Name identifies the provider.
func (p *AviationStack) Name() string { return "aviationstack" }

// Available reports whether the API key is configured.
func (p *AviationStack) Available() bool { return p.key != "" }

type aviationStackResponse struct {
	Data []json.RawMessage `json:"data"`
}

type aviationStackFlight struct {
	FlightStatus string `json:"flight_status"`
	Departure    struct {
		Scheduled string `json:"scheduled"`
		Estimated string `json:"estimated"`
	} `json:"departure"`
	Flight struct {
		IATA string `json:"iata"`
	} `json:"flight"`
}

// TryMatch queries /flights by IATA designator and origin. Delay is the gap
// between estimated and scheduled departure when both are reported, else 0.
func (p *AviationStack) TryMatch(ctx context.Context, q Query) (*domain.FlightMatch, int, error) {
	params := url.Values{}
	params.Set("access_key", p.key)
	params.Set("flight_iata", q.Callsign)
	params.Set("dep_iata", q.Origin)

	var resp aviationStackResponse
	if err := fetchJSON(ctx, p.client, p.baseURL+"/flights?"+params.Encode(), &resp); err != nil {
		return nil, 0, fmt.Errorf("aviationstack: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, 0, nil
	}

	raw := resp.Data[0]
	var f aviationStackFlight
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, 0, fmt.Errorf("aviationstack: decode flight: %w", err)
	}

	match := &domain.FlightMatch{
		Source:   p.Name(),
		Callsign: f.Flight.IATA,
		Status:   f.FlightStatus,
		Raw:      raw,
	}

	delay := 0
	scheduled, errSched := parseProviderTime(f.Departure.Scheduled)
	estimated, errEst := parseProviderTime(f.Departure.Estimated)
	if errSched == nil && errEst == nil {
		match.Scheduled = scheduled
		match.Estimated = estimated
		delay = int(estimated.Sub(scheduled) / time.Minute)
		if delay < 0 {
			delay = 0
		}
	}
	return match, delay, nil
}

// parseProviderTime accepts the timestamp shapes the schedule providers emit.
func parseProviderTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	// Some feeds use a lower-case separator.
	s = strings.Replace(s, "t", "T", 1)
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

var _ Provider = (*AviationStack)(nil)
