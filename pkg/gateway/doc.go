// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package gateway maintains a websocket session with Discord's gateway.
//
// A Client identifies (or resumes a stored session), keeps the heartbeat
// going, reconnects with exponential back-off and hands every DISPATCH to a
// Dispatcher as a typed event from package events. Run blocks until the
// context ends or Discord closes the connection with a code that makes
// reconnecting pointless, such as an invalid token.
package gateway
