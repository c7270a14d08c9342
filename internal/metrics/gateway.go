// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayPayloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retux_gateway_payloads_total",
		Help: "Gateway payloads by direction (in, out) and opcode name",
	}, []string{"direction", "op"})

	GatewayDispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retux_gateway_dispatch_total",
		Help: "DISPATCH events received by event name",
	}, []string{"event"})

	GatewayHeartbeatLatency = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "retux_gateway_heartbeat_latency_seconds",
		Help: "Latency between the last heartbeat and its acknowledgement",
	})

	GatewayReconnectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retux_gateway_reconnects_total",
		Help: "Gateway reconnects by reason",
	}, []string{"reason"})

	GatewaySessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retux_gateway_sessions_total",
		Help: "Session lifecycle events by kind (identify, resume, ready)",
	}, []string{"kind"})
)

// IncGatewayPayload counts a payload crossing the websocket.
func IncGatewayPayload(direction, op string) {
	GatewayPayloadsTotal.WithLabelValues(direction, op).Inc()
}

// IncDispatch counts a DISPATCH event.
func IncDispatch(event string) {
	if event == "" {
		event = "unknown"
	}
	GatewayDispatchTotal.WithLabelValues(event).Inc()
}

// SetHeartbeatLatency publishes the most recent heartbeat round trip.
func SetHeartbeatLatency(d time.Duration) {
	GatewayHeartbeatLatency.Set(d.Seconds())
}

// IncReconnect counts a reconnect.
func IncReconnect(reason string) {
	GatewayReconnectsTotal.WithLabelValues(reason).Inc()
}

// IncSession counts an IDENTIFY or RESUME.
func IncSession(kind string) {
	GatewaySessionsTotal.WithLabelValues(kind).Inc()
}
