// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"sync"
	"time"

	"github.com/ManuGH/retux/pkg/gateway"
)

// MemoryStore keeps sessions for the life of the process. It lets a bot
// that restarts its gateway in-process resume, nothing more.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.RWMutex
	data map[string]record
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, data: make(map[string]record)}
}

// Durable is false: nothing survives the process.
func (s *MemoryStore) Durable() bool { return false }

func (s *MemoryStore) Load(_ context.Context, key string) (gateway.SessionState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[key]
	if !ok || s.now().Sub(rec.SavedAt) > s.ttl {
		return gateway.SessionState{}, false, nil
	}
	return rec.SessionState, true, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, st gateway.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = record{SessionState: st, SavedAt: s.now()}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
