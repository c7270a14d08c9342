// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldTraceID   = "trace_id"
	FieldSessionID = "session_id"
	FieldShard     = "shard"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Gateway fields
	FieldOpcode    = "op"
	FieldSequence  = "seq"
	FieldDispatch  = "dispatch"
	FieldCloseCode = "close_code"
	FieldLatency   = "latency"

	// REST fields
	FieldMethod     = "method"
	FieldRoute      = "route"
	FieldBucket     = "bucket"
	FieldStatus     = "status"
	FieldRetryAfter = "retry_after"
	FieldAttempt    = "attempt"
)
