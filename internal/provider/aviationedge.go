package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/delaydex/delaydex-backend/internal/domain"
)

const (
	aviationEdgeDefaultBaseURL = "https://aviation-edge.com/v2/public"

	// scheduleTolerance is how far a historical candidate's scheduled time
	// may sit from the requested one and still count as the same flight.
	scheduleTolerance = 5 * time.Minute
)

// AviationEdge is the historical-lookup provider: it queries departures by
// origin, date, airline and flight number, then selects the candidate whose
// scheduled time is closest to the requested one. Requires an API key.
type AviationEdge struct {
	baseURL string
	key     string
	client  *http.Client
}

// NewAviationEdge creates an AviationEdge provider. An empty baseURL selects
// the public endpoint.
func NewAviationEdge(client *http.Client, baseURL, key string) *AviationEdge {
	if baseURL == "" {
		baseURL = aviationEdgeDefaultBaseURL
	}
	return &AviationEdge{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		client:  httpClientOrDefault(client),
	}
}

// Name identifies the provider.
func (p *AviationEdge) Name() string { return "aviationedge" }

// Available reports whether the API key is configured.
func (p *AviationEdge) Available() bool { return p.key != "" }

type aviationEdgeFlight struct {
	Status    string `json:"status"`
	Departure struct {
		ScheduledTime string   `json:"scheduledTime"`
		Delay         looseInt `json:"delay"`
	} `json:"departure"`
	Flight struct {
		IATANumber string `json:"iataNumber"`
	} `json:"flight"`
}

// looseInt tolerates the feed reporting delay as a number, a quoted number,
// or null, all of which occur in practice. Anything unparseable reads as 0.
type looseInt int

func (n *looseInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		*n = 0
		return nil
	}
	*n = looseInt(v)
	return nil
}

// TryMatch queries /flightsHistory and picks the record scheduled within
// five minutes of the requested departure. Delay is the provider-reported
// departure delay, defaulting to 0.
func (p *AviationEdge) TryMatch(ctx context.Context, q Query) (*domain.FlightMatch, int, error) {
	params := url.Values{}
	params.Set("key", p.key)
	params.Set("code", q.Origin)
	params.Set("type", "departure")
	params.Set("date_from", q.Date)
	params.Set("airline_iata", q.Airline)
	params.Set("flight_num", q.FlightNumber)

	var records []json.RawMessage
	if err := fetchJSON(ctx, p.client, p.baseURL+"/flightsHistory?"+params.Encode(), &records); err != nil {
		return nil, 0, fmt.Errorf("aviationedge: %w", err)
	}

	for _, raw := range records {
		var f aviationEdgeFlight
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		scheduled, err := parseProviderTime(f.Departure.ScheduledTime)
		if err != nil {
			continue
		}
		diff := scheduled.Sub(q.ScheduledAt)
		if diff < 0 {
			diff = -diff
		}
		if diff >= scheduleTolerance {
			continue
		}

		delay := int(f.Departure.Delay)
		if delay < 0 {
			delay = 0
		}
		match := &domain.FlightMatch{
			Source:    p.Name(),
			Callsign:  f.Flight.IATANumber,
			Status:    f.Status,
			Scheduled: scheduled,
			Raw:       raw,
		}
		return match, delay, nil
	}
	return nil, 0, nil
}

var _ Provider = (*AviationEdge)(nil)
