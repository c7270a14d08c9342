// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xlog "github.com/ManuGH/retux/internal/log"
)

func TestHolderReloadAppliesLogLevel(t *testing.T) {
	path := writeFile(t, "retux.yaml", "token: x\nlog:\n  level: info\n")
	loader := NewLoader(path)
	initial, err := loader.Load()
	require.NoError(t, err)
	require.NoError(t, xlog.SetLevel("info"))
	t.Cleanup(func() { _ = xlog.SetLevel("info") })

	h := NewHolder(initial, loader)
	updates := make(chan AppConfig, 1)
	h.RegisterListener(updates)

	require.NoError(t, os.WriteFile(path, []byte("token: x\nlog:\n  level: debug\n"), 0o600))
	require.NoError(t, h.Reload(context.Background()))

	assert.Equal(t, "debug", h.Get().Log.Level)
	assert.Equal(t, "debug", xlog.Level())
	select {
	case cfg := <-updates:
		assert.Equal(t, "debug", cfg.Log.Level)
	default:
		t.Fatal("listener not notified")
	}
}

func TestHolderReloadKeepsOldOnError(t *testing.T) {
	path := writeFile(t, "retux.yaml", "token: x\n")
	loader := NewLoader(path)
	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewHolder(initial, loader)

	require.NoError(t, os.WriteFile(path, []byte("token: x\nunknown: 1\n"), 0o600))
	require.Error(t, h.Reload(context.Background()))
	assert.Equal(t, initial, h.Get())
}

func TestHolderWatcherReloads(t *testing.T) {
	path := writeFile(t, "retux.yaml", "token: x\nlog:\n  level: info\n")
	loader := NewLoader(path)
	initial, err := loader.Load()
	require.NoError(t, err)
	t.Cleanup(func() { _ = xlog.SetLevel("info") })

	h := NewHolder(initial, loader)
	h.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, h.StartWatcher(ctx))
	defer h.Stop()

	require.NoError(t, os.WriteFile(path, []byte("token: x\nlog:\n  level: warn\n"), 0o600))
	assert.Eventually(t, func() bool { return h.Get().Log.Level == "warn" }, 5*time.Second, 20*time.Millisecond)
}

func TestHolderWatcherDisabledWithoutFile(t *testing.T) {
	h := NewHolder(Default(), NewLoader(""))
	assert.NoError(t, h.StartWatcher(context.Background()))
	h.Stop()
}
