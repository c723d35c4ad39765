package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/delaydex/delaydex-backend/internal/apperr"
	"github.com/delaydex/delaydex-backend/internal/clock"
	"github.com/delaydex/delaydex-backend/internal/domain"
	"github.com/delaydex/delaydex-backend/internal/provider"
)

type fakeMatcher struct {
	calls int32
	fn    func(context.Context, provider.Query) (*domain.FlightMatch, int, error)
}

func (f *fakeMatcher) Match(ctx context.Context, q provider.Query) (*domain.FlightMatch, int, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fn == nil {
		return nil, 0, nil
	}
	return f.fn(ctx, q)
}

func (f *fakeMatcher) callCount() int32 { return atomic.LoadInt32(&f.calls) }

type fakeWriter struct {
	calls   int32
	lastID  string
	lastOut domain.Outcome
	hash    string
	err     error
}

func (f *fakeWriter) CloseMarket(_ context.Context, marketID string, outcome domain.Outcome) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	f.lastID = marketID
	f.lastOut = outcome
	if f.err != nil {
		return "", f.err
	}
	return f.hash, nil
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func validRequest() domain.ResolutionRequest {
	return domain.ResolutionRequest{
		MarketID:           "0xabc",
		OriginCode:         "JFK",
		AirlineCode:        "AA",
		FlightNumber:       "100",
		ScheduledDeparture: "2024-01-01 08:00:00",
	}
}

func historicalMatch(delay int, status string) func(context.Context, provider.Query) (*domain.FlightMatch, int, error) {
	return func(_ context.Context, q provider.Query) (*domain.FlightMatch, int, error) {
		return &domain.FlightMatch{
			Source:    "aviationedge",
			Callsign:  q.Callsign,
			Status:    status,
			Scheduled: q.ScheduledAt,
			Raw:       json.RawMessage(`{"status":"` + status + `"}`),
		}, delay, nil
	}
}

func TestResolve_MissingFieldRejectsBeforeAnyNetworkCall(t *testing.T) {
	t.Parallel()

	fields := []func(*domain.ResolutionRequest){
		func(r *domain.ResolutionRequest) { r.MarketID = "" },
		func(r *domain.ResolutionRequest) { r.OriginCode = "" },
		func(r *domain.ResolutionRequest) { r.AirlineCode = "" },
		func(r *domain.ResolutionRequest) { r.FlightNumber = "" },
		func(r *domain.ResolutionRequest) { r.ScheduledDeparture = "" },
	}
	for _, clear := range fields {
		m := &fakeMatcher{}
		r := New(m, clock.NewFixed(testNow), nil, "Monad Testnet")

		req := validRequest()
		clear(&req)
		_, err := r.Resolve(context.Background(), req)
		if !errors.Is(err, apperr.Invalid) {
			t.Fatalf("expected validation failure, got %v", err)
		}
		var mp *apperr.MissingParams
		if !errors.As(err, &mp) || len(mp.Required) == 0 {
			t.Fatalf("expected MissingParams with fields, got %v", err)
		}
		if m.callCount() != 0 {
			t.Fatal("validation failure must not reach providers")
		}
	}
}

func TestResolve_UnparseableDateIsValidationFailure(t *testing.T) {
	t.Parallel()

	m := &fakeMatcher{}
	r := New(m, clock.NewFixed(testNow), nil, "Monad Testnet")

	req := validRequest()
	req.ScheduledDeparture = "first of never"
	_, err := r.Resolve(context.Background(), req)
	if !errors.Is(err, apperr.Invalid) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if m.callCount() != 0 {
		t.Fatal("validation failure must not reach providers")
	}
}

func TestResolve_HistoricalMatchDelay45(t *testing.T) {
	t.Parallel()

	m := &fakeMatcher{fn: historicalMatch(45, "landed")}
	r := New(m, clock.NewFixed(testNow), nil, "Monad Testnet")

	res, err := r.Resolve(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Outcome != domain.OutcomeDelayedShort {
		t.Fatalf("expected DELAYED_SHORT, got %v", res.Outcome)
	}
	if res.DelayMinutes != 45 {
		t.Fatalf("expected 45 delay minutes, got %d", res.DelayMinutes)
	}
	if res.Flight == nil {
		t.Fatal("expected flight populated")
	}
	if res.MarketID != "0xabc" {
		t.Fatalf("market id must be echoed, got %q", res.MarketID)
	}
}

func TestResolve_CancellationDominatesDelay(t *testing.T) {
	t.Parallel()

	m := &fakeMatcher{fn: historicalMatch(200, "cancelled")}
	r := New(m, clock.NewFixed(testNow), nil, "Monad Testnet")

	res, err := r.Resolve(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Outcome != domain.OutcomeCancelled {
		t.Fatalf("expected CANCELLED, got %v", res.Outcome)
	}
}

func TestResolve_NoMatchFutureFlightStaysPending(t *testing.T) {
	t.Parallel()

	m := &fakeMatcher{}
	r := New(m, clock.NewFixed(testNow), nil, "Monad Testnet")

	req := validRequest()
	req.ScheduledDeparture = testNow.Add(3 * time.Hour).Format("2006-01-02 15:04:05")
	res, err := r.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Outcome != domain.OutcomePending {
		t.Fatalf("expected PENDING, got %v", res.Outcome)
	}
	if res.DelayMinutes != 0 {
		t.Fatalf("expected 0 delay minutes, got %d", res.DelayMinutes)
	}
	if res.Flight != nil {
		t.Fatalf("expected nil flight, got %#v", res.Flight)
	}
}

func TestResolve_NoMatchPastFlightAssumedDelayed(t *testing.T) {
	t.Parallel()

	m := &fakeMatcher{}
	r := New(m, clock.NewFixed(testNow), nil, "Monad Testnet")

	req := validRequest()
	req.ScheduledDeparture = testNow.Add(-90 * time.Minute).Format("2006-01-02 15:04:05")
	res, err := r.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Outcome != domain.OutcomeDelayedShort {
		t.Fatalf("expected heuristic DELAYED_SHORT, got %v", res.Outcome)
	}
	if res.DelayMinutes != 90 {
		t.Fatalf("expected 90 elapsed minutes, got %d", res.DelayMinutes)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()

	m := &fakeMatcher{fn: historicalMatch(45, "landed")}
	r := New(m, clock.NewFixed(testNow), nil, "Monad Testnet")

	first, err := r.Resolve(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	second, err := r.Resolve(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ:\n%#v\n%#v", first, second)
	}
}

func TestResolve_SubmissionSkippedWithoutWriter(t *testing.T) {
	t.Parallel()

	m := &fakeMatcher{fn: historicalMatch(200, "landed")}
	r := New(m, clock.NewFixed(testNow), nil, "Monad Testnet")

	res, err := r.Resolve(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("skipped submission must not be an error: %v", err)
	}
	if res.Submission.Submitted || res.Submission.TxHash != "" {
		t.Fatalf("expected not-submitted result, got %+v", res.Submission)
	}
	if res.Submission.Chain != "Monad Testnet" {
		t.Fatalf("unexpected chain label %q", res.Submission.Chain)
	}
}

func TestResolve_SubmitsOutcomeToWriter(t *testing.T) {
	t.Parallel()

	m := &fakeMatcher{fn: historicalMatch(200, "landed")}
	w := &fakeWriter{hash: "0xdeadbeef"}
	r := New(m, clock.NewFixed(testNow), nil, "Monad Testnet", WithWriter(w))

	res, err := r.Resolve(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.Submission.Submitted || res.Submission.TxHash != "0xdeadbeef" {
		t.Fatalf("expected submitted result, got %+v", res.Submission)
	}
	if w.lastID != "0xabc" || w.lastOut != domain.OutcomeDelayedLong {
		t.Fatalf("writer received %q/%v", w.lastID, w.lastOut)
	}
}

func TestResolve_SubmissionFailureCarriesComputedOutcome(t *testing.T) {
	t.Parallel()

	m := &fakeMatcher{fn: historicalMatch(45, "landed")}
	w := &fakeWriter{err: errors.New("rpc rejected")}
	r := New(m, clock.NewFixed(testNow), nil, "Monad Testnet", WithWriter(w))

	res, err := r.Resolve(context.Background(), validRequest())
	if !errors.Is(err, apperr.Submission) {
		t.Fatalf("expected submission error, got %v", err)
	}
	if res == nil {
		t.Fatal("failed submission must still return the classification result")
	}
	if res.Outcome != domain.OutcomeDelayedShort || res.Flight == nil {
		t.Fatalf("partial result incomplete: %#v", res)
	}
	if res.Submission.Submitted {
		t.Fatal("failed submission must not report submitted")
	}
}

func TestFlightStatus_ReportsDelayWithoutSubmission(t *testing.T) {
	t.Parallel()

	m := &fakeMatcher{fn: historicalMatch(45, "landed")}
	w := &fakeWriter{hash: "0x1"}
	r := New(m, clock.NewFixed(testNow), nil, "Monad Testnet", WithWriter(w))

	req := validRequest()
	req.MarketID = ""
	rep, err := r.FlightStatus(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rep.Status != "delayed" || rep.DelayMinutes != 45 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if rep.FlightNumber != "AA100" {
		t.Fatalf("unexpected flight number %q", rep.FlightNumber)
	}
	if !rep.LastUpdated.Equal(testNow) {
		t.Fatalf("unexpected LastUpdated %v", rep.LastUpdated)
	}
	if atomic.LoadInt32(&w.calls) != 0 {
		t.Fatal("flight-status must never write to the chain")
	}
}

func TestFlightStatus_NoMatchIsScheduled(t *testing.T) {
	t.Parallel()

	m := &fakeMatcher{}
	r := New(m, clock.NewFixed(testNow), nil, "Monad Testnet")

	req := validRequest()
	rep, err := r.FlightStatus(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rep.Status != "scheduled" || rep.Flight != nil {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestFlightStatus_ValidationDoesNotRequireMarketID(t *testing.T) {
	t.Parallel()

	m := &fakeMatcher{}
	r := New(m, clock.NewFixed(testNow), nil, "Monad Testnet")

	req := domain.ResolutionRequest{OriginCode: "JFK"}
	_, err := r.FlightStatus(context.Background(), req)
	var mp *apperr.MissingParams
	if !errors.As(err, &mp) {
		t.Fatalf("expected MissingParams, got %v", err)
	}
	for _, f := range mp.Required {
		if f == "marketId" {
			t.Fatal("status check must not require marketId")
		}
	}
	if m.callCount() != 0 {
		t.Fatal("validation failure must not reach providers")
	}
}

func TestInferOutcomeWithoutData_ExactlyNowIsDelayed(t *testing.T) {
	t.Parallel()

	r := New(&fakeMatcher{}, clock.NewFixed(testNow), nil, "Monad Testnet")
	outcome, delay := r.InferOutcomeWithoutData(testNow)
	if outcome != domain.OutcomeDelayedShort || delay != 0 {
		t.Fatalf("expected DELAYED_SHORT/0 at the boundary, got %v/%d", outcome, delay)
	}
}
