// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package bus is the in-process event transport between the gateway read
// loop and event handlers.
package bus

import "context"

// TopicAll receives every message regardless of topic.
const TopicAll = "*"

// Message is an opaque payload; retux publishes events.Event values.
type Message interface{}

type Subscriber interface {
	// C returns a read-only message channel. It is closed by Close.
	C() <-chan Message
	// Close unsubscribes. It is safe to call more than once.
	Close() error
}

// Bus is the event transport abstraction.
type Bus interface {
	Publish(ctx context.Context, topic string, msg Message) error
	Subscribe(ctx context.Context, topic string, opts ...SubscribeOption) (Subscriber, error)
}

type subscribeConfig struct {
	dropWhenFull bool
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscribeConfig)

// DropWhenFull makes publishers skip the subscriber while its buffer is
// full instead of waiting for it.
func DropWhenFull() SubscribeOption {
	return func(c *subscribeConfig) { c.dropWhenFull = true }
}
