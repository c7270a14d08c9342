// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package session persists gateway session state (session id, sequence and
// resume URL) so a restarted process can RESUME instead of IDENTIFY.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/retux/pkg/gateway"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// DefaultTTL is how long a saved session is offered for resuming. Discord
// rejects resumes of sessions that have been gone much longer.
const DefaultTTL = 15 * time.Minute

// Store is a gateway.SessionStore that owns resources.
type Store interface {
	gateway.SessionStore
	io.Closer
}

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Dir holds the sqlite file or the badger directory.
	Dir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	TTL time.Duration
}

// Open creates the store named by cfg.Backend. An empty backend is memory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case "", BackendMemory:
		return NewMemoryStore(cfg.TTL), nil
	case BackendSQLite:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("session: %s backend needs a directory", backend)
		}
		return OpenSQLiteStore(ctx, filepath.Join(cfg.Dir, "sessions.sqlite"), cfg.TTL)
	case BackendBadger:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("session: %s backend needs a directory", backend)
		}
		return OpenBadgerStore(filepath.Join(cfg.Dir, "badger"), cfg.TTL)
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("session: %s backend needs an address", backend)
		}
		return OpenRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		}, cfg.TTL)
	default:
		return nil, fmt.Errorf("unknown session backend: %s (supported: memory, sqlite, badger, redis)", cfg.Backend)
	}
}

// record is the stored form shared by the byte-oriented backends.
type record struct {
	gateway.SessionState
	SavedAt time.Time `json:"saved_at"`
}

func encode(st gateway.SessionState, now time.Time) ([]byte, error) {
	return json.Marshal(record{SessionState: st, SavedAt: now.UTC()})
}

func decode(raw []byte) (record, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return record{}, fmt.Errorf("session: decode record: %w", err)
	}
	return rec, nil
}
