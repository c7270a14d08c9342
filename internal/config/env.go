// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/retux/internal/log"
)

// Environment keys.
const (
	EnvToken           = "RETUX_TOKEN"
	EnvIntents         = "RETUX_INTENTS"
	EnvGatewayURL      = "RETUX_GATEWAY_URL"
	EnvGatewayVersion  = "RETUX_GATEWAY_VERSION"
	EnvGatewayCompress = "RETUX_GATEWAY_COMPRESS"
	EnvShardID         = "RETUX_SHARD_ID"
	EnvShardCount      = "RETUX_SHARD_COUNT"
	EnvAPIURL          = "RETUX_API_URL"
	EnvHTTPTimeout     = "RETUX_HTTP_TIMEOUT"
	EnvHTTPRetries     = "RETUX_HTTP_RETRIES"
	EnvLogLevel        = "RETUX_LOG_LEVEL"
	EnvSessionBackend  = "RETUX_SESSION_BACKEND"
	EnvSessionDir      = "RETUX_SESSION_DIR"
	EnvSessionTTL      = "RETUX_SESSION_TTL"
	EnvRedisAddr       = "RETUX_REDIS_ADDR"
	EnvRedisPassword   = "RETUX_REDIS_PASSWORD"
	EnvOpsListen       = "RETUX_OPS_LISTEN"
	EnvTracingEnabled  = "RETUX_TRACING_ENABLED"
	EnvTracingExporter = "RETUX_TRACING_EXPORTER"
	EnvTracingEndpoint = "RETUX_TRACING_ENDPOINT"
	EnvTracingSampling = "RETUX_TRACING_SAMPLING_RATE"
)

func isSensitiveEnv(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "token") || strings.Contains(k, "password")
}

// ParseString reads key from the environment, falling back to defaultValue
// when unset or empty. Sensitive values are never logged.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if isSensitiveEnv(key) {
		ev.Bool("sensitive", true).Msg("using environment variable")
	} else {
		ev.Str("value", value).Msg("using environment variable")
	}
	return value
}

// ParseInt reads an integer; invalid values fall back to defaultValue with
// a warning.
func ParseInt(key string, defaultValue int) int {
	return parseWith(key, defaultValue, strconv.Atoi)
}

// ParseBool accepts the strconv.ParseBool spellings.
func ParseBool(key string, defaultValue bool) bool {
	return parseWith(key, defaultValue, strconv.ParseBool)
}

// ParseDuration accepts time.ParseDuration syntax.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseWith(key, defaultValue, time.ParseDuration)
}

// ParseFloat reads a float64.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseWith(key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

func parseWith[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return defaultValue
	}
	parsed, err := parse(strings.TrimSpace(v))
	if err != nil {
		logger.Warn().
			Err(err).
			Str("key", key).
			Str("value", v).
			Interface("default", defaultValue).
			Msg("invalid environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Interface("value", parsed).
		Str("source", "environment").
		Msg("using environment variable")
	return parsed
}
