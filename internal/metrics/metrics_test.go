// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRESTRequest_StatusLabels(t *testing.T) {
	before := testutil.ToFloat64(RESTRequestsTotal.WithLabelValues("GET", "/test/{id}", "error"))
	ObserveRESTRequest("GET", "/test/{id}", 0, time.Millisecond)
	ObserveRESTRequest("GET", "/test/{id}", 200, time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(RESTRequestsTotal.WithLabelValues("GET", "/test/{id}", "error")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(RESTRequestsTotal.WithLabelValues("GET", "/test/{id}", "200")), 1.0)
}

func TestSetCircuitBreakerState_OneHot(t *testing.T) {
	SetCircuitBreakerState("test", "half-open")

	assert.Equal(t, 0.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("test", "closed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("test", "half-open")))
	assert.Equal(t, 0.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("test", "open")))

	trips := testutil.ToFloat64(CircuitBreakerTrips.WithLabelValues("test"))
	SetCircuitBreakerState("test", "open")
	assert.Equal(t, trips+1, testutil.ToFloat64(CircuitBreakerTrips.WithLabelValues("test")))
}

func TestIncBusDropReason_DefaultsLabels(t *testing.T) {
	before := testutil.ToFloat64(BusDroppedTotal.WithLabelValues("unknown", "unknown"))
	IncBusDropReason("", "")
	assert.Equal(t, before+1, testutil.ToFloat64(BusDroppedTotal.WithLabelValues("unknown", "unknown")))
}
