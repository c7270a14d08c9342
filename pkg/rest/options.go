// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithHTTPClient replaces the hardened default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-attempt timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaxRetries sets how many attempts a request gets by default.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithResetWait sets the pause after a connection reset.
func WithResetWait(d time.Duration) Option {
	return func(c *Client) { c.resetWait = d }
}

// WithServerRetryWait sets the initial back-off between 5xx retries.
func WithServerRetryWait(d time.Duration) Option {
	return func(c *Client) { c.serverWait = d }
}

// WithGlobalRate caps requests per second across all routes. Zero or less
// disables pacing; 429 handling stays active.
func WithGlobalRate(perSecond float64) Option {
	return func(c *Client) { c.globalRate = perSecond }
}

// WithCircuitBreaker sets how many consecutive upstream failures open the
// breaker and how long it stays open. A threshold of 0 disables it.
func WithCircuitBreaker(threshold int, reset time.Duration) Option {
	return func(c *Client) {
		c.breakerThreshold = threshold
		c.breakerReset = reset
	}
}

// WithUserAgent overrides the DiscordBot user agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the logger used for request and rate limit lines.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// RequestOption adjusts a single Request call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	reason  string
	retries int
	headers http.Header
}

// WithReason records an audit log reason for the action.
func WithReason(reason string) RequestOption {
	return func(o *requestOptions) { o.reason = reason }
}

// WithRetries overrides the client's attempt count for this request.
func WithRetries(n int) RequestOption {
	return func(o *requestOptions) { o.retries = n }
}

// WithHeader adds a header to this request.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(http.Header)
		}
		o.headers.Add(key, value)
	}
}
