package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/delaydex/delaydex-backend/internal/apperr"
)

func testQuery(scheduled time.Time) Query {
	return Query{
		Callsign:     "AA100",
		Origin:       "JFK",
		Airline:      "AA",
		FlightNumber: "100",
		ScheduledAt:  scheduled,
		Date:         scheduled.Format("2006-01-02"),
	}
}

func TestOpenSky_MatchesExactCallsign(t *testing.T) {
	t.Parallel()

	scheduled := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	first := scheduled.Unix()
	last := first + 45*60

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("begin"); got != fmt.Sprint(first) {
			t.Errorf("unexpected begin %q", got)
		}
		if got := r.URL.Query().Get("end"); got != fmt.Sprint(first+3600) {
			t.Errorf("unexpected end %q", got)
		}
		fmt.Fprintf(w, `[
			{"callsign":"DL200  ","firstSeen":%d,"lastSeen":%d},
			{"callsign":"AA100  ","firstSeen":%d,"lastSeen":%d}
		]`, first, last, first, last)
	}))
	defer srv.Close()

	p := NewOpenSky(srv.Client(), srv.URL)
	match, delay, err := p.TryMatch(context.Background(), testQuery(scheduled))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.Callsign != "AA100" {
		t.Fatalf("unexpected callsign %q", match.Callsign)
	}
	if delay != 45 {
		t.Fatalf("expected delay 45, got %d", delay)
	}
	if match.Source != "opensky" {
		t.Fatalf("unexpected source %q", match.Source)
	}
	if len(match.Raw) == 0 {
		t.Fatal("raw record must be carried through")
	}
}

func TestOpenSky_MatchesByFlightNumberContainment(t *testing.T) {
	t.Parallel()

	scheduled := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	first := scheduled.Unix()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `[{"callsign":"AAL100","firstSeen":%d,"lastSeen":%d}]`, first, first)
	}))
	defer srv.Close()

	p := NewOpenSky(srv.Client(), srv.URL)
	match, delay, err := p.TryMatch(context.Background(), testQuery(scheduled))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if match == nil || match.Callsign != "AAL100" {
		t.Fatalf("expected containment match, got %#v", match)
	}
	if delay != 0 {
		t.Fatalf("expected delay 0, got %d", delay)
	}
}

func TestOpenSky_NegativeSpanClampsToZero(t *testing.T) {
	t.Parallel()

	scheduled := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	first := scheduled.Unix()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `[{"callsign":"AA100","firstSeen":%d,"lastSeen":%d}]`, first, first-600)
	}))
	defer srv.Close()

	p := NewOpenSky(srv.Client(), srv.URL)
	_, delay, err := p.TryMatch(context.Background(), testQuery(scheduled))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if delay != 0 {
		t.Fatalf("expected clamped delay 0, got %d", delay)
	}
}

func TestOpenSky_NoMatchIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"callsign":"DL200","firstSeen":1,"lastSeen":2}]`)
	}))
	defer srv.Close()

	p := NewOpenSky(srv.Client(), srv.URL)
	match, delay, err := p.TryMatch(context.Background(), testQuery(time.Now()))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if match != nil || delay != 0 {
		t.Fatalf("expected no match, got %#v delay=%d", match, delay)
	}
}

func TestOpenSky_ServerErrorIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewOpenSky(srv.Client(), srv.URL)
	_, _, err := p.TryMatch(context.Background(), testQuery(time.Now()))
	if !errors.Is(err, Transient) {
		t.Fatalf("expected Transient, got %v", err)
	}
}

func TestOpenSky_ClientErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenSky(srv.Client(), srv.URL)
	_, _, err := p.TryMatch(context.Background(), testQuery(time.Now()))
	if !errors.Is(err, apperr.Unavailable) {
		t.Fatalf("expected Unavailable, got %v", err)
	}
	if errors.Is(err, Transient) {
		t.Fatalf("4xx must not be retryable: %v", err)
	}
}

func TestOpenSky_GarbageBodyIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"not":"an array"`)
	}))
	defer srv.Close()

	p := NewOpenSky(srv.Client(), srv.URL)
	_, _, err := p.TryMatch(context.Background(), testQuery(time.Now()))
	if !errors.Is(err, apperr.Unavailable) {
		t.Fatalf("expected Unavailable, got %v", err)
	}
}

func TestOpenSky_AlwaysAvailable(t *testing.T) {
	t.Parallel()

	if !NewOpenSky(nil, "").Available() {
		t.Fatal("opensky requires no credential and must always be available")
	}
}
