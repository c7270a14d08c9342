// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/ManuGH/retux/pkg/gateway"
)

// BadgerStore keys records "sess:<shard key>" and lets badger expire them.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

func OpenBadgerStore(path string, ttl time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("session: open badger %s: %w", path, err)
	}
	return &BadgerStore{db: db, ttl: ttl}, nil
}

// openBadgerInMemory backs tests.
func openBadgerInMemory(ttl time.Duration) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db, ttl: ttl}, nil
}

func badgerKey(key string) []byte { return []byte("sess:" + key) }

func (s *BadgerStore) Load(_ context.Context, key string) (gateway.SessionState, bool, error) {
	var rec record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var derr error
			rec, derr = decode(val)
			return derr
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return gateway.SessionState{}, false, nil
	}
	if err != nil {
		return gateway.SessionState{}, false, fmt.Errorf("session: load %s: %w", key, err)
	}
	return rec.SessionState, true, nil
}

func (s *BadgerStore) Save(_ context.Context, key string, st gateway.SessionState) error {
	buf, err := encode(st, time.Now())
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(badgerKey(key), buf).WithTTL(s.ttl))
	})
}

func (s *BadgerStore) Clear(_ context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(key))
	})
}

func (s *BadgerStore) Close() error { return s.db.Close() }
