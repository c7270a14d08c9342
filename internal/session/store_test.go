// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/retux/internal/persistence/sqlite"
	"github.com/ManuGH/retux/pkg/gateway"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	sq, err := OpenSQLiteStore(ctx, filepath.Join(t.TempDir(), "sessions.sqlite"), time.Hour)
	require.NoError(t, err)

	bd, err := openBadgerInMemory(time.Hour)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rd, err := OpenRedisStore(ctx, RedisConfig{Addr: mr.Addr()}, time.Hour)
	require.NoError(t, err)

	stores := map[string]Store{
		BackendMemory: NewMemoryStore(time.Hour),
		BackendSQLite: sq,
		BackendBadger: bd,
		BackendRedis:  rd,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	key := gateway.SessionKey(0, 1)
	want := gateway.SessionState{ID: "abc123", Sequence: 42, ResumeURL: "wss://resume.discord.gg"}

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Load(ctx, key)
			require.NoError(t, err)
			assert.False(t, ok, "empty store")

			require.NoError(t, s.Save(ctx, key, want))
			got, ok, err := s.Load(ctx, key)
			require.NoError(t, err)
			require.True(t, ok)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("loaded state mismatch (-want +got):\n%s", diff)
			}

			want2 := want
			want2.Sequence = 99
			require.NoError(t, s.Save(ctx, key, want2))
			got, _, err = s.Load(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, int64(99), got.Sequence, "save overwrites")

			_, ok, err = s.Load(ctx, gateway.SessionKey(1, 2))
			require.NoError(t, err)
			assert.False(t, ok, "keys are per shard")

			require.NoError(t, s.Clear(ctx, key))
			_, ok, err = s.Load(ctx, key)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Clear(ctx, key), "clearing a missing key is fine")
		})
	}
}

func TestOnlyMemoryStoreDiesWithProcess(t *testing.T) {
	for name, s := range backends(t) {
		d, ok := s.(gateway.DurableStore)
		durable := !ok || d.Durable()
		assert.Equal(t, name != BackendMemory, durable, name)
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "k", gateway.SessionState{ID: "x"}))
	now = now.Add(59 * time.Second)
	_, ok, _ := s.Load(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = s.Load(ctx, "k")
	assert.False(t, ok)
}

func TestSQLiteStoreExpires(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLiteStore(ctx, filepath.Join(t.TempDir(), "s.sqlite"), time.Minute)
	require.NoError(t, err)
	defer s.Close()

	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }
	require.NoError(t, s.Save(ctx, "k", gateway.SessionState{ID: "x"}))

	now = now.Add(2 * time.Minute)
	_, ok, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "s.sqlite")

	s, err := OpenSQLiteStore(ctx, path, time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "k", gateway.SessionState{ID: "x", Sequence: 7}))
	require.NoError(t, s.Close())

	s, err = OpenSQLiteStore(ctx, path, time.Hour)
	require.NoError(t, err)
	defer s.Close()
	got, ok, err := s.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), got.Sequence)

	issues, err := sqlite.VerifyIntegrity(ctx, s.Path(), false)
	require.NoError(t, err)
	assert.Nil(t, issues)
}

func TestRedisStoreUsesTTLAndPrefix(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s, err := OpenRedisStore(ctx, RedisConfig{Addr: mr.Addr(), Prefix: "bot1:"}, time.Minute)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(ctx, "shard:0:1", gateway.SessionState{ID: "x"}))
	assert.True(t, mr.Exists("bot1:session:shard:0:1"))
	assert.Equal(t, time.Minute, mr.TTL("bot1:session:shard:0:1"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := s.Load(ctx, "shard:0:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreCorruptRecord(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s, err := OpenRedisStore(ctx, RedisConfig{Addr: mr.Addr()}, time.Minute)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, mr.Set("retux:session:k", "{not json"))
	_, _, err = s.Load(ctx, "k")
	assert.ErrorContains(t, err, "decode record")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	dir := t.TempDir()
	s, err = Open(ctx, Config{Backend: "SQLite", Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(ctx, Config{Backend: BackendBadger, Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, s)
	require.NoError(t, s.Close())

	mr := miniredis.RunT(t)
	s, err = Open(ctx, Config{Backend: BackendRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.Close())

	for _, cfg := range []Config{
		{Backend: BackendSQLite},
		{Backend: BackendBadger},
		{Backend: BackendRedis},
	} {
		_, err := Open(ctx, cfg)
		assert.Error(t, err, cfg.Backend)
	}

	_, err = Open(ctx, Config{Backend: "bolt"})
	assert.ErrorContains(t, err, "unknown session backend: bolt")
}

func TestOpenRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := OpenRedisStore(ctx, RedisConfig{Addr: "127.0.0.1:1"}, time.Minute)
	assert.ErrorContains(t, err, "redis connection failed")
}
