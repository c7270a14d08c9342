// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package bot

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/retux/pkg/gateway"
	"github.com/ManuGH/retux/pkg/rest"
)

// Option configures a Bot.
type Option func(*Bot)

// WithGatewayOptions forwards options to the gateway client.
func WithGatewayOptions(opts ...gateway.Option) Option {
	return func(b *Bot) { b.gatewayOpts = append(b.gatewayOpts, opts...) }
}

// WithRESTOptions forwards options to the REST client.
func WithRESTOptions(opts ...rest.Option) Option {
	return func(b *Bot) { b.restOpts = append(b.restOpts, opts...) }
}

// WithLogger replaces the bot's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bot) { b.logger = l }
}

// WithBusBuffer sets how many events may queue per subscriber before the
// gateway waits.
func WithBusBuffer(n int) Option {
	return func(b *Bot) { b.busBuffer = n }
}

// WithPublishTimeout bounds how long the gateway read loop waits on a full
// subscriber before the event is dropped.
func WithPublishTimeout(d time.Duration) Option {
	return func(b *Bot) {
		if d > 0 {
			b.publishTimeout = d
		}
	}
}

// WithOpsServer serves /healthz, /readyz, /status and /metrics on addr
// while the bot runs.
func WithOpsServer(addr string) Option {
	return func(b *Bot) { b.opsAddr = addr }
}
