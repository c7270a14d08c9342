// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package rest is a client for Discord's HTTP API.
//
// Every call goes through Client.Request, which applies the global and
// per-bucket rate limits Discord advertises in its X-RateLimit-* headers,
// retries 429s, 5xx responses and connection resets, and turns error bodies
// into *HTTPError values that match the package sentinels with errors.Is.
//
//	c := rest.New(token)
//	me, err := c.GetCurrentUser(ctx)
//	if errors.Is(err, rest.ErrUnauthorized) {
//		// bad token
//	}
package rest
