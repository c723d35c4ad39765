package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewProviderRequestsTotal returns a Prometheus counter vec for flight-data
// provider calls, labelled by provider name.
func NewProviderRequestsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_requests_total",
		Help: "Total number of flight-data provider calls",
	}, []string{"provider"})
}

// NewProviderFailuresTotal returns a Prometheus counter vec for swallowed
// provider failures, labelled by provider name.
func NewProviderFailuresTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_failures_total",
		Help: "Total number of provider calls that failed and were skipped",
	}, []string{"provider"})
}

// NewProviderRetriesTotal returns a Prometheus counter for retry attempts
// performed against transient provider failures.
func NewProviderRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "provider_retries_total",
		Help: "Total number of retry attempts performed against providers",
	})
}

// NewSubmissionsTotal returns a Prometheus counter vec for chain submissions,
// labelled by result ("ok" or "error").
func NewSubmissionsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chain_submissions_total",
		Help: "Total number of closeMarket submissions by result",
	}, []string{"result"})
}
