// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errUpstream = errors.New("upstream")

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 30*time.Second)
	assert.Equal(t, StateClosed, cb.State())

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errUpstream }), errUpstream)
		assert.Equal(t, StateClosed, cb.State(), "call %d", i+1)
	}

	assert.ErrorIs(t, cb.Execute(func() error { return errUpstream }), errUpstream)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called, "open breaker must not run the function")
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, time.Minute)

	_ = cb.Execute(func() error { return errUpstream })
	assert.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return errUpstream })

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	now := time.Unix(1000, 0)
	cb := NewCircuitBreaker("test", 1, 10*time.Second)
	cb.now = func() time.Time { return now }

	_ = cb.Execute(func() error { return errUpstream })
	assert.Equal(t, StateOpen, cb.State())

	now = now.Add(11 * time.Second)
	_ = cb.Execute(func() error { return errUpstream })
	assert.Equal(t, StateOpen, cb.State(), "failure while half-open reopens")

	now = now.Add(11 * time.Second)
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_DisabledThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", 0, time.Minute)
	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return errUpstream })
	}
	assert.Equal(t, StateClosed, cb.State())
}
