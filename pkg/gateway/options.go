// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Option configures a Client.
type Option func(*Client)

// WithURL sets the gateway URL, normally taken from GET /gateway/bot.
func WithURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithVersion selects the gateway API version.
func WithVersion(v int) Option {
	return func(c *Client) {
		if v > 0 {
			c.version = v
		}
	}
}

// WithCompression enables zlib-stream transport compression.
func WithCompression(enabled bool) Option {
	return func(c *Client) { c.compress = enabled }
}

// WithShard identifies as shard id of count.
func WithShard(id, count int) Option {
	return func(c *Client) {
		if count > 0 && id >= 0 && id < count {
			c.shard = &[2]int{id, count}
		}
	}
}

// WithDispatcher receives every DISPATCH and connection event.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Client) { c.dispatcher = d }
}

// WithSessionStore persists the session so a restart resumes it.
func WithSessionStore(s SessionStore) Option {
	return func(c *Client) { c.store = s }
}

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithPresence sets the presence sent with IDENTIFY.
func WithPresence(p PresenceUpdate) Option {
	if p.Activities == nil {
		p.Activities = []Activity{}
	}
	return func(c *Client) { c.presence = &p }
}

// WithLargeThreshold sets the member count above which offline members are
// not sent in GUILD_CREATE (50..250).
func WithLargeThreshold(n int) Option {
	return func(c *Client) { c.largeThreshold = n }
}

// WithBackoff bounds the reconnect back-off.
func WithBackoff(initial, max time.Duration) Option {
	return func(c *Client) {
		c.backoffInitial = initial
		c.backoffMax = max
	}
}

// WithInvalidSessionWait sets the random pause before identifying again
// after a non-resumable INVALID_SESSION. Discord asks for 1 to 5 seconds.
func WithInvalidSessionWait(min, max time.Duration) Option {
	return func(c *Client) {
		c.invalidMin = min
		c.invalidMax = max
	}
}

// WithJitter replaces the source of the first-heartbeat jitter, a value in
// [0, 1).
func WithJitter(f func() float64) Option {
	return func(c *Client) {
		if f != nil {
			c.jitter = f
		}
	}
}
