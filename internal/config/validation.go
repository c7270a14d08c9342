// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/retux/internal/validate"
)

var sessionBackends = []string{"memory", "sqlite", "badger", "redis"}

// Validate reports every problem in cfg at once as a validate.ValidationError.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.NotEmpty("Token", cfg.Token)
	if _, err := cfg.ParsedIntents(); err != nil {
		v.AddError("Intents", err.Error(), cfg.Intents)
	}

	if cfg.Gateway.URL != "" {
		v.URL("Gateway.URL", cfg.Gateway.URL, []string{"ws", "wss"})
	}
	v.Range("Gateway.Version", cfg.Gateway.Version, 6, 10)
	v.Range("Gateway.ShardCount", cfg.Gateway.ShardCount, 1, 1<<16)
	if cfg.Gateway.ShardID < 0 || cfg.Gateway.ShardID >= max(cfg.Gateway.ShardCount, 1) {
		v.AddError("Gateway.ShardID",
			fmt.Sprintf("must be in [0, %d), got %d", cfg.Gateway.ShardCount, cfg.Gateway.ShardID),
			cfg.Gateway.ShardID)
	}
	v.Range("Gateway.LargeThreshold", cfg.Gateway.LargeThreshold, 50, 250)

	v.URL("API.URL", cfg.API.URL, []string{"http", "https"})
	v.DurationRange("API.Timeout", cfg.API.Timeout, time.Second, 5*time.Minute)
	v.Range("API.Retries", cfg.API.Retries, 0, 10)

	if _, err := validate.ParseLogLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		v.AddError("Log.Level", err.Error(), cfg.Log.Level)
	}

	backend := strings.ToLower(cfg.Session.Backend)
	v.OneOf("Session.Backend", backend, sessionBackends)
	switch backend {
	case "sqlite", "badger":
		v.NotEmpty("Session.Dir", cfg.Session.Dir)
	case "redis":
		v.NotEmpty("Session.RedisAddr", cfg.Session.RedisAddr)
	}
	v.DurationRange("Session.TTL", cfg.Session.TTL, time.Minute, 24*time.Hour)

	if cfg.Ops.Listen != "" {
		v.ListenAddr("Ops.Listen", cfg.Ops.Listen)
	}

	if cfg.Tracing.Enabled {
		v.OneOf("Tracing.Exporter", cfg.Tracing.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Tracing.Endpoint", cfg.Tracing.Endpoint)
		if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
			v.AddError("Tracing.SamplingRate", "must be between 0 and 1", cfg.Tracing.SamplingRate)
		}
	}

	return v.Err()
}
