package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	BlogRequestsTotal = counterVec("http", "requests_total",
		"Total number of API requests by route", "method", "path")

	BlogRequestsInFlight = gauge("http", "requests_in_flight",
		"Number of API requests currently being processed")

	BlogRequestDurationSeconds = histogramVec("http", "request_duration_seconds",
		"Duration of API requests in seconds", prometheus.DefBuckets, "method", "path", "status")

	HTTPErrorsTotal = counterVec("http", "errors_total",
		"Total number of error responses by status", "status", "path", "method")

	PanicsRecovered = counter("http", "panics_recovered_total",
		"Total number of handler panics turned into 500 responses")

	RateLimitBlocked = counterVec("http", "rate_limit_blocked_total",
		"Total number of requests rejected by the rate limiter", "path", "limiter_type")
)
