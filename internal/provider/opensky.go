package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/delaydex/delaydex-backend/internal/domain"
)

const (
	openSkyDefaultBaseURL = "https://opensky-network.org/api"

	// openSkyWindow is the departure window scanned after the scheduled time.
	openSkyWindow = time.Hour
)

// OpenSky is the window-scan provider: it fetches all flights departing in a
// window around the scheduled time and matches by callsign. The public API
// needs no credential, so this provider is always eligible.
type OpenSky struct {
	baseURL string
	client  *http.Client
}

// NewOpenSky creates an OpenSky provider. An empty baseURL selects the
// public API endpoint.
func NewOpenSky(client *http.Client, baseURL string) *OpenSky {
	if baseURL == "" {
		baseURL = openSkyDefaultBaseURL
	}
	return &OpenSky{baseURL: strings.TrimRight(baseURL, "/"), client: httpClientOrDefault(client)}
}

// Name identifies the provider.
func (p *OpenSky) Name() string { return "opensky" }

// Available is always true: the public API requires no key.
func (p *OpenSky) Available() bool { return true }

// openSkyFlight is the subset of an OpenSky flight record the matcher reads.
type openSkyFlight struct {
	Callsign  string `json:"callsign"`
	FirstSeen int64  `json:"firstSeen"`
	LastSeen  int64  `json:"lastSeen"`
}

// TryMatch scans flights in [scheduled, scheduled+window] and matches the
// expected callsign exactly or by flight-number containment. Delay is the
// observed contact span (lastSeen - firstSeen), a proxy for the departure
// delay.
func (p *OpenSky) TryMatch(ctx context.Context, q Query) (*domain.FlightMatch, int, error) {
	begin := q.ScheduledAt.Unix()
	end := begin + int64(openSkyWindow/time.Second)

	u := fmt.Sprintf("%s/flights/all?begin=%s&end=%s",
		p.baseURL, strconv.FormatInt(begin, 10), strconv.FormatInt(end, 10))

	var records []json.RawMessage
	if err := fetchJSON(ctx, p.client, u, &records); err != nil {
		return nil, 0, fmt.Errorf("opensky: %w", err)
	}

	number := strings.ToUpper(q.FlightNumber)
	for _, raw := range records {
		var f openSkyFlight
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		callsign := strings.ToUpper(strings.TrimSpace(f.Callsign))
		if callsign == "" {
			continue
		}
		if callsign != q.Callsign && !strings.Contains(callsign, number) {
			continue
		}

		delay := int((f.LastSeen - f.FirstSeen) / 60)
		if delay < 0 {
			delay = 0
		}
		match := &domain.FlightMatch{
			Source:    p.Name(),
			Callsign:  callsign,
			FirstSeen: time.Unix(f.FirstSeen, 0).UTC(),
			LastSeen:  time.Unix(f.LastSeen, 0).UTC(),
			Raw:       raw,
		}
		return match, delay, nil
	}
	return nil, 0, nil
}

var _ Provider = (*OpenSky)(nil)
