// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"context"
	"fmt"
)

// SessionState is what a RESUME needs.
type SessionState struct {
	ID        string `json:"session_id"`
	Sequence  int64  `json:"seq"`
	ResumeURL string `json:"resume_gateway_url"`
}

// Resumable reports whether the state names a session.
func (s SessionState) Resumable() bool {
	return s.ID != ""
}

// SessionStore persists session state between processes so a restarted bot
// resumes instead of identifying again. Load returns ok=false when nothing
// is stored under key.
type SessionStore interface {
	Load(ctx context.Context, key string) (state SessionState, ok bool, err error)
	Save(ctx context.Context, key string, state SessionState) error
	Clear(ctx context.Context, key string) error
}

// DurableStore is implemented by stores that can report whether saved
// state outlives the process. Stores without it are assumed durable.
type DurableStore interface {
	Durable() bool
}

func storeIsDurable(s SessionStore) bool {
	if s == nil {
		return false
	}
	if d, ok := s.(DurableStore); ok {
		return d.Durable()
	}
	return true
}

// SessionKey is the store key of a shard's session.
func SessionKey(shardID, shardCount int) string {
	return fmt.Sprintf("shard:%d:%d", shardID, shardCount)
}
