// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RESTRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retux_rest_requests_total",
		Help: "Discord REST requests by method, route template and status code",
	}, []string{"method", "route", "status"})

	RESTRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retux_rest_request_duration_seconds",
		Help:    "Discord REST request latency, excluding rate limit waits",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	RESTRateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retux_rest_rate_limited_total",
		Help: "429 responses received from Discord by scope (global, bucket)",
	}, []string{"scope"})

	RESTRateLimitWait = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retux_rest_rate_limit_wait_seconds",
		Help:    "Time spent waiting on a rate limit lockdown before sending",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"scope"})

	RESTRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retux_rest_retries_total",
		Help: "REST request retries by reason",
	}, []string{"reason"})
)

// ObserveRESTRequest records the outcome of one HTTP round trip. status 0
// means a transport failure.
func ObserveRESTRequest(method, route string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	RESTRequestsTotal.WithLabelValues(method, route, label).Inc()
	RESTRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncRateLimited counts a 429 for the given scope.
func IncRateLimited(scope string) {
	RESTRateLimitedTotal.WithLabelValues(scope).Inc()
}

// ObserveRateLimitWait records a wait imposed by a lockdown.
func ObserveRateLimitWait(scope string, d time.Duration) {
	RESTRateLimitWait.WithLabelValues(scope).Observe(d.Seconds())
}

// IncRetry counts a retried request.
func IncRetry(reason string) {
	RESTRetriesTotal.WithLabelValues(reason).Inc()
}
