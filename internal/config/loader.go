// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"os"
	"sort"
	"time"
)

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath string
	// ConsumedEnvKeys records which environment keys were consulted.
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a loader. An empty path means defaults plus ENV only.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath:      configPath,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path is the config file path, possibly empty.
func (l *Loader) Path() string { return l.configPath }

func (l *Loader) envString(key, current string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, current)
}

func (l *Loader) envBool(key string, current bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, current)
}

func (l *Loader) envInt(key string, current int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, current)
}

func (l *Loader) envDuration(key string, current time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, current)
}

func (l *Loader) envFloat(key string, current float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, current)
}

// Load applies defaults, then the file, then ENV, then validates.
func (l *Loader) Load() (AppConfig, error) {
	cfg, err := l.LoadUnvalidated()
	if err != nil {
		return AppConfig{}, err
	}
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// LoadUnvalidated is Load without the final Validate, for tooling that
// reports problems itself.
func (l *Loader) LoadUnvalidated() (AppConfig, error) {
	cfg := Default()
	if l.configPath != "" {
		if _, err := os.Stat(l.configPath); err != nil {
			return AppConfig{}, fmt.Errorf("config file: %w", err)
		}
		if err := decodeFile(l.configPath, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("config file %s: %w", l.configPath, err)
		}
	}
	l.mergeEnv(&cfg)
	return cfg, nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.Token = l.envString(EnvToken, cfg.Token)
	cfg.Intents = l.envString(EnvIntents, cfg.Intents)

	cfg.Gateway.URL = l.envString(EnvGatewayURL, cfg.Gateway.URL)
	cfg.Gateway.Version = l.envInt(EnvGatewayVersion, cfg.Gateway.Version)
	cfg.Gateway.Compress = l.envBool(EnvGatewayCompress, cfg.Gateway.Compress)
	cfg.Gateway.ShardID = l.envInt(EnvShardID, cfg.Gateway.ShardID)
	cfg.Gateway.ShardCount = l.envInt(EnvShardCount, cfg.Gateway.ShardCount)

	cfg.API.URL = l.envString(EnvAPIURL, cfg.API.URL)
	cfg.API.Timeout = l.envDuration(EnvHTTPTimeout, cfg.API.Timeout)
	cfg.API.Retries = l.envInt(EnvHTTPRetries, cfg.API.Retries)

	cfg.Log.Level = l.envString(EnvLogLevel, cfg.Log.Level)

	cfg.Session.Backend = l.envString(EnvSessionBackend, cfg.Session.Backend)
	cfg.Session.Dir = l.envString(EnvSessionDir, cfg.Session.Dir)
	cfg.Session.TTL = l.envDuration(EnvSessionTTL, cfg.Session.TTL)
	cfg.Session.RedisAddr = l.envString(EnvRedisAddr, cfg.Session.RedisAddr)
	cfg.Session.RedisPassword = l.envString(EnvRedisPassword, cfg.Session.RedisPassword)

	cfg.Ops.Listen = l.envString(EnvOpsListen, cfg.Ops.Listen)

	cfg.Tracing.Enabled = l.envBool(EnvTracingEnabled, cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = l.envString(EnvTracingExporter, cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = l.envString(EnvTracingEndpoint, cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = l.envFloat(EnvTracingSampling, cfg.Tracing.SamplingRate)
}

// ConsumedKeys lists the consulted environment keys, sorted.
func (l *Loader) ConsumedKeys() []string {
	keys := make([]string, 0, len(l.ConsumedEnvKeys))
	for k := range l.ConsumedEnvKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
