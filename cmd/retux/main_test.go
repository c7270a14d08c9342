// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/retux/internal/config"
	"github.com/ManuGH/retux/internal/session"
	"github.com/ManuGH/retux/internal/testutil"
	"github.com/ManuGH/retux/pkg/gateway"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "retux ")
	assert.Contains(t, out, "DiscordBot (https://github.com/ManuGH/retux")
}

func TestConfigInitThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retux.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	_, err = execute(t, "config", "init", path)
	assert.ErrorIs(t, err, config.ErrFileExists)

	out, err = execute(t, "--config", path, "config", "validate")
	require.Error(t, err, "defaults carry no token")
	assert.Contains(t, out, "Token: cannot be empty")

	t.Setenv(config.EnvToken, "from-env")
	out, err = execute(t, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "configuration OK")
}

func TestConfigShowMasksToken(t *testing.T) {
	t.Setenv(config.EnvToken, "MTA4NzY1NDMyMTA5ODc2NTQzMg.Gabc12.secret")
	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "token: MTA4***")
	assert.NotContains(t, out, "secret")
}

func TestGatewayInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gateway/bot", r.URL.Path)
		assert.Equal(t, "Bot tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"wss://gateway.discord.gg","shards":2,"session_start_limit":{"total":1000,"remaining":998,"reset_after":1000,"max_concurrency":1}}`))
	}))
	defer srv.Close()

	t.Setenv(config.EnvToken, "tok")
	t.Setenv(config.EnvAPIURL, srv.URL)
	out, err := execute(t, "gateway", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "wss://gateway.discord.gg")
	assert.Contains(t, out, "998/1000")
}

func TestSessionShowAndClear(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvToken, "tok")
	t.Setenv(config.EnvSessionBackend, "sqlite")
	t.Setenv(config.EnvSessionDir, dir)

	out, err := execute(t, "session", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "shard:0:1: no resumable session")

	ctx := context.Background()
	store, err := session.Open(ctx, session.Config{Backend: "sqlite", Dir: dir})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "shard:0:1", gateway.SessionState{ID: "abcdef123", Sequence: 12, ResumeURL: "wss://resume"}))
	require.NoError(t, store.Close())

	out, err = execute(t, "session", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "session abcd*** seq 12")

	out, err = execute(t, "session", "verify")
	require.NoError(t, err)
	assert.Contains(t, out, ": ok")

	_, err = execute(t, "session", "clear")
	require.NoError(t, err)
	out, err = execute(t, "session", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "no resumable session")
}

func TestSessionVerifyNeedsSQLite(t *testing.T) {
	t.Setenv(config.EnvToken, "tok")
	_, err := execute(t, "session", "verify")
	assert.ErrorContains(t, err, "needs the sqlite backend")
}

func TestBuildBotUsesConfiguredGateway(t *testing.T) {
	cfg := config.Default()
	cfg.Token = "tok"
	cfg.Gateway.URL = "wss://example.invalid"
	cfg.Gateway.ShardID = 1
	cfg.Gateway.ShardCount = 2

	b, err := buildBot(context.Background(), cfg, session.NewMemoryStore(0))
	require.NoError(t, err)
	id, count := b.Gateway().Shard()
	assert.Equal(t, 1, id)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, b.Status().Handlers)
}

func TestRunUntilCanceled(t *testing.T) {
	g := testutil.NewGateway(t, testutil.Ready("0123456789abcdef"))

	cfg := config.Default()
	cfg.Token = "tok"
	cfg.Gateway.URL = g.URL()
	cfg.API.URL = g.Server.URL
	cfg.Session.Backend = "sqlite"
	cfg.Session.Dir = t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, config.NewLoader("")) }()

	persisted := func() bool {
		store, err := session.Open(context.Background(), sessionConfig(cfg))
		if err != nil {
			return false
		}
		defer store.Close()
		_, ok, _ := store.Load(context.Background(), "shard:0:1")
		return ok
	}
	require.Eventually(t, persisted, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 1, g.Identifies())
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop")
	}

	store, err := session.Open(context.Background(), sessionConfig(cfg))
	require.NoError(t, err)
	defer store.Close()
	st, ok, err := store.Load(context.Background(), "shard:0:1")
	require.NoError(t, err)
	require.True(t, ok, "session persisted on shutdown")
	assert.Equal(t, "0123456789abcdef", st.ID)
}

func TestMain(m *testing.M) {
	os.Unsetenv("RETUX_CONFIG")
	os.Exit(m.Run())
}
