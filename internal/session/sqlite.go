// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/retux/internal/persistence/sqlite"
	"github.com/ManuGH/retux/pkg/gateway"
)

const sqliteSchemaVersion = 1

// SQLiteStore keeps one row per shard key.
type SQLiteStore struct {
	db   *sql.DB
	path string
	ttl  time.Duration
	now  func() time.Time
}

func OpenSQLiteStore(ctx context.Context, path string, ttl time.Duration) (*SQLiteStore, error) {
	db, err := sqlite.Open(ctx, path, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db, path: path, ttl: ttl, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session store: migration failed: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return err
	}
	if current >= sqliteSchemaVersion {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const schema = `
	CREATE TABLE IF NOT EXISTS gateway_sessions (
		shard_key TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		resume_url TEXT NOT NULL DEFAULT '',
		saved_at_ms INTEGER NOT NULL
	);`
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", sqliteSchemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// Path is the database file, for integrity checks.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Load(ctx context.Context, key string) (gateway.SessionState, bool, error) {
	var (
		st      gateway.SessionState
		savedMS int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, seq, resume_url, saved_at_ms FROM gateway_sessions WHERE shard_key = ?`, key,
	).Scan(&st.ID, &st.Sequence, &st.ResumeURL, &savedMS)
	if errors.Is(err, sql.ErrNoRows) {
		return gateway.SessionState{}, false, nil
	}
	if err != nil {
		return gateway.SessionState{}, false, fmt.Errorf("session: load %s: %w", key, err)
	}
	if s.now().Sub(time.UnixMilli(savedMS)) > s.ttl {
		return gateway.SessionState{}, false, nil
	}
	return st, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, st gateway.SessionState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gateway_sessions (shard_key, session_id, seq, resume_url, saved_at_ms)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(shard_key) DO UPDATE SET
			session_id = excluded.session_id,
			seq = excluded.seq,
			resume_url = excluded.resume_url,
			saved_at_ms = excluded.saved_at_ms`,
		key, st.ID, st.Sequence, st.ResumeURL, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("session: save %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM gateway_sessions WHERE shard_key = ?`, key); err != nil {
		return fmt.Errorf("session: clear %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
