// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"time"

	"github.com/ManuGH/retux/pkg/resources"
)

// AppConfig is the complete runtime configuration of the retux binary.
type AppConfig struct {
	Token   string        `yaml:"token" toml:"token"`
	Intents string        `yaml:"intents" toml:"intents"`
	Gateway GatewayConfig `yaml:"gateway" toml:"gateway"`
	API     APIConfig     `yaml:"api" toml:"api"`
	Log     LogConfig     `yaml:"log" toml:"log"`
	Session SessionConfig `yaml:"session" toml:"session"`
	Ops     OpsConfig     `yaml:"ops" toml:"ops"`
	Tracing TracingConfig `yaml:"tracing" toml:"tracing"`
}

type GatewayConfig struct {
	URL            string `yaml:"url,omitempty" toml:"url,omitempty"`
	Version        int    `yaml:"version" toml:"version"`
	Compress       bool   `yaml:"compress" toml:"compress"`
	ShardID        int    `yaml:"shardId" toml:"shard_id"`
	ShardCount     int    `yaml:"shardCount" toml:"shard_count"`
	LargeThreshold int    `yaml:"largeThreshold" toml:"large_threshold"`
}

type APIConfig struct {
	URL     string        `yaml:"url" toml:"url"`
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
	Retries int           `yaml:"retries" toml:"retries"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
}

type SessionConfig struct {
	Backend       string        `yaml:"backend" toml:"backend"`
	Dir           string        `yaml:"dir,omitempty" toml:"dir,omitempty"`
	RedisAddr     string        `yaml:"redisAddr,omitempty" toml:"redis_addr,omitempty"`
	RedisPassword string        `yaml:"redisPassword,omitempty" toml:"redis_password,omitempty"`
	RedisDB       int           `yaml:"redisDb,omitempty" toml:"redis_db,omitempty"`
	TTL           time.Duration `yaml:"ttl" toml:"ttl"`
}

type OpsConfig struct {
	// Listen is empty to disable the ops server.
	Listen string `yaml:"listen" toml:"listen"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" toml:"enabled"`
	Exporter     string  `yaml:"exporter" toml:"exporter"`
	Endpoint     string  `yaml:"endpoint" toml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate" toml:"sampling_rate"`
}

// Default returns the built-in defaults.
func Default() AppConfig {
	return AppConfig{
		Intents: "DEFAULT",
		Gateway: GatewayConfig{
			Version:        10,
			ShardCount:     1,
			LargeThreshold: 50,
		},
		API: APIConfig{
			URL:     "https://discord.com/api/v10",
			Timeout: 15 * time.Second,
			Retries: 3,
		},
		Log:     LogConfig{Level: "info"},
		Session: SessionConfig{Backend: "memory", TTL: 15 * time.Minute},
		Tracing: TracingConfig{Exporter: "grpc", Endpoint: "localhost:4317", SamplingRate: 1.0},
	}
}

// ParsedIntents resolves the Intents string.
func (c AppConfig) ParsedIntents() (resources.Intents, error) {
	return resources.ParseIntents(c.Intents)
}
