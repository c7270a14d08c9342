// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"errors"
	"fmt"
)

// Gateway close codes.
const (
	CloseUnknownError         = 4000
	CloseUnknownOpcode        = 4001
	CloseDecodeError          = 4002
	CloseNotAuthenticated     = 4003
	CloseAuthenticationFailed = 4004
	CloseAlreadyAuthenticated = 4005
	CloseInvalidSeq           = 4007
	CloseRateLimited          = 4008
	CloseSessionTimedOut      = 4009
	CloseInvalidShard         = 4010
	CloseShardingRequired     = 4011
	CloseInvalidAPIVersion    = 4012
	CloseInvalidIntents       = 4013
	CloseDisallowedIntents    = 4014
)

var (
	ErrAuthenticationFailed = errors.New("gateway: authentication failed")
	ErrInvalidShard         = errors.New("gateway: invalid shard")
	ErrShardingRequired     = errors.New("gateway: sharding required")
	ErrInvalidAPIVersion    = errors.New("gateway: invalid API version")
	ErrInvalidIntents       = errors.New("gateway: invalid intents")
	ErrDisallowedIntents    = errors.New("gateway: disallowed intents")
	ErrConnectionClosed     = errors.New("gateway: connection closed")

	ErrNotConnected = errors.New("gateway: not connected")
	ErrZombie       = errors.New("gateway: heartbeat not acknowledged")
	ErrReconnect    = errors.New("gateway: reconnect requested")
)

var fatalCloseCodes = map[int]error{
	CloseAuthenticationFailed: ErrAuthenticationFailed,
	CloseInvalidShard:         ErrInvalidShard,
	CloseShardingRequired:     ErrShardingRequired,
	CloseInvalidAPIVersion:    ErrInvalidAPIVersion,
	CloseInvalidIntents:       ErrInvalidIntents,
	CloseDisallowedIntents:    ErrDisallowedIntents,
}

// CloseError is a close frame received from Discord.
type CloseError struct {
	Code   int
	Reason string
}

func (e *CloseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("gateway: closed with code %d", e.Code)
	}
	return fmt.Sprintf("gateway: closed with code %d: %s", e.Code, e.Reason)
}

// Unwrap maps fatal codes to their sentinel, anything else to
// ErrConnectionClosed.
func (e *CloseError) Unwrap() error {
	if err, ok := fatalCloseCodes[e.Code]; ok {
		return err
	}
	return ErrConnectionClosed
}

// Fatal reports whether reconnecting cannot help.
func (e *CloseError) Fatal() bool {
	_, ok := fatalCloseCodes[e.Code]
	return ok
}

// InvalidatesSession reports whether the session can no longer be resumed.
func (e *CloseError) InvalidatesSession() bool {
	return e.Code == CloseInvalidSeq || e.Code == CloseSessionTimedOut
}

// invalidSessionError ends a connection after INVALID_SESSION.
type invalidSessionError struct {
	resumable bool
}

func (e *invalidSessionError) Error() string {
	return fmt.Sprintf("gateway: invalid session (resumable=%t)", e.resumable)
}
