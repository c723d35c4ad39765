package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	testlog "github.com/delaydex/delaydex-backend/internal/testutil"
)

func TestObservability_LogsRequest(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	h := Observability(rec.Logger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if !rec.Has("info", "http request") {
		t.Fatalf("expected access log entry, got %#v", rec.Entries())
	}
}
