// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ManuGH/retux/internal/log"
	"github.com/ManuGH/retux/internal/metrics"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 256

// MemoryBus is an in-memory pub/sub. Delivery to a full subscriber blocks,
// bounded by the publish context, unless the subscriber was created with
// DropWhenFull. A message one subscriber cannot take is dropped for that
// subscriber only and counted.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string][]*memSub
	buffer int
}

const dropLogEvery = 100

var dropCount atomic.Uint64

// NewMemoryBus creates a bus whose subscribers buffer buffer messages. A
// non-positive buffer uses DefaultBuffer.
func NewMemoryBus(buffer int) *MemoryBus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &MemoryBus{subs: make(map[string][]*memSub), buffer: buffer}
}

func publishDropReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "context_done"
	}
}

// dropReasonFull is recorded for DropWhenFull subscribers.
const dropReasonFull = "subscriber_full"

// Publish delivers msg to the topic's subscribers and to TopicAll
// subscribers. Every subscriber is attempted; the returned error reports
// the first blocking subscriber that missed msg. The read lock is held
// while sending so Close never closes a channel mid-send.
func (b *MemoryBus) Publish(ctx context.Context, topic string, msg Message) error {
	if ctx == nil {
		return fmt.Errorf("publish context is nil")
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	targets := b.subs[topic]
	if topic != TopicAll {
		targets = append(append([]*memSub(nil), targets...), b.subs[TopicAll]...)
	}
	var firstErr error
	for _, s := range targets {
		select {
		case s.ch <- msg:
			continue
		default:
		}
		if s.dropWhenFull {
			drop(topic, dropReasonFull)
			continue
		}
		select {
		case s.ch <- msg:
		case <-ctx.Done():
			drop(topic, publishDropReason(ctx.Err()))
			if firstErr == nil {
				firstErr = fmt.Errorf("publish topic %q: %w", topic, ctx.Err())
			}
		}
	}
	return firstErr
}

func drop(topic, reason string) {
	metrics.IncBusDropReason(topic, reason)
	count := dropCount.Add(1)
	if count%dropLogEvery == 1 {
		log.L().Warn().
			Str("topic", topic).
			Str("reason", reason).
			Uint64("dropped", count).
			Msg("memory bus dropped a message, a subscriber is not keeping up")
	}
}

// Subscribe registers a subscriber for topic. It is closed when ctx ends or
// Close is called.
func (b *MemoryBus) Subscribe(ctx context.Context, topic string, opts ...SubscribeOption) (Subscriber, error) {
	if ctx == nil {
		return nil, fmt.Errorf("subscribe context is nil")
	}
	var cfg subscribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &memSub{
		b:            b,
		topic:        topic,
		ch:           make(chan Message, b.buffer),
		stop:         make(chan struct{}),
		dropWhenFull: cfg.dropWhenFull,
	}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], s)
	b.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				_ = s.Close()
			case <-s.stop:
			}
		}()
	}
	return s, nil
}

// Subscribers returns the number of subscribers on topic.
func (b *MemoryBus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

type memSub struct {
	b     *MemoryBus
	topic string
	ch    chan Message
	stop  chan struct{}
	once  sync.Once

	dropWhenFull bool
}

func (s *memSub) C() <-chan Message {
	return s.ch
}

func (s *memSub) Close() error {
	s.once.Do(func() {
		s.b.mu.Lock()
		defer s.b.mu.Unlock()

		lst := s.b.subs[s.topic]
		out := lst[:0]
		for _, c := range lst {
			if c != s {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			delete(s.b.subs, s.topic)
		} else {
			s.b.subs[s.topic] = out
		}
		close(s.ch)
		close(s.stop)
	})
	return nil
}

var _ Bus = (*MemoryBus)(nil)
