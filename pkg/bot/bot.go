// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/retux/internal/bus"
	xlog "github.com/ManuGH/retux/internal/log"
	"github.com/ManuGH/retux/internal/metrics"
	"github.com/ManuGH/retux/internal/ops"
	"github.com/ManuGH/retux/pkg/events"
	"github.com/ManuGH/retux/pkg/gateway"
	"github.com/ManuGH/retux/pkg/resources"
	"github.com/ManuGH/retux/pkg/rest"
)

// DefaultPublishTimeout bounds a dispatch onto a full subscriber.
const DefaultPublishTimeout = 2 * time.Second

// Handler handles one event. A returned error is logged; it never stops
// the bot.
type Handler func(ctx context.Context, ev events.Event) error

// Bot owns a gateway connection and a REST client and routes dispatched
// events to handlers.
type Bot struct {
	rest    *rest.Client
	gateway *gateway.Client
	bus     *bus.MemoryBus
	logger  zerolog.Logger

	gatewayOpts    []gateway.Option
	restOpts       []rest.Option
	busBuffer      int
	publishTimeout time.Duration
	opsAddr        string

	running atomic.Bool

	mu       sync.RWMutex
	handlers map[string][]Handler

	dispatched atomic.Uint64
	failed     atomic.Uint64
}

// New builds a bot. The token is shared by the gateway and REST clients.
func New(token string, intents resources.Intents, opts ...Option) *Bot {
	b := &Bot{
		logger:         xlog.WithComponent("bot"),
		publishTimeout: DefaultPublishTimeout,
		handlers:       make(map[string][]Handler),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.bus = bus.NewMemoryBus(b.busBuffer)
	b.rest = rest.New(token, b.restOpts...)

	gwOpts := append([]gateway.Option{}, b.gatewayOpts...)
	gwOpts = append(gwOpts, gateway.WithDispatcher(gateway.DispatcherFunc(b.publish)))
	b.gateway = gateway.New(token, intents, gwOpts...)
	return b
}

// REST returns the REST client.
func (b *Bot) REST() *rest.Client { return b.rest }

// Gateway returns the gateway client.
func (b *Bot) Gateway() *gateway.Client { return b.gateway }

// On registers h for the named event. Any common spelling of the name is
// accepted ("on_message_create", "MessageCreate", "MESSAGE_CREATE").
// Handlers for the same name run in registration order.
func (b *Bot) On(name string, h Handler) {
	if h == nil {
		return
	}
	name = events.Normalize(name)
	if !events.IsKnown(name) {
		b.logger.Debug().Str(xlog.FieldEvent, name).Msg("handler registered for an event without a model, it receives *events.Raw")
	}
	b.mu.Lock()
	b.handlers[name] = append(b.handlers[name], h)
	b.mu.Unlock()
}

// Handle registers a typed handler; the event name comes from T.
func Handle[T events.Event](b *Bot, fn func(ctx context.Context, ev T) error) error {
	var zero T
	if _, raw := any(zero).(*events.Raw); raw {
		return errors.New("bot: Handle cannot derive a name for *events.Raw, use On")
	}
	b.On(zero.EventName(), func(ctx context.Context, ev events.Event) error {
		typed, ok := ev.(T)
		if !ok {
			return fmt.Errorf("bot: %s handler got %T", ev.EventName(), ev)
		}
		return fn(ctx, typed)
	})
	return nil
}

// Subscribe streams events named name (or every event for "*") until ctx
// ends. Events arriving while the subscription's buffer is full are
// dropped for that subscription; registered handlers still see them.
func (b *Bot) Subscribe(ctx context.Context, name string) (<-chan events.Event, error) {
	topic := bus.TopicAll
	if name != bus.TopicAll {
		topic = events.Normalize(name)
	}
	sub, err := b.bus.Subscribe(ctx, topic, bus.DropWhenFull())
	if err != nil {
		return nil, err
	}
	out := make(chan events.Event)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()
		for msg := range sub.C() {
			ev, ok := msg.(events.Event)
			if !ok {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Run connects to the gateway and dispatches events until ctx ends (nil)
// or the gateway fails fatally.
func (b *Bot) Run(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return errors.New("bot: already running")
	}
	defer b.running.Store(false)

	g, gctx := errgroup.WithContext(ctx)

	// Subscribe before the gateway starts so READY is never missed.
	sub, err := b.bus.Subscribe(gctx, bus.TopicAll)
	if err != nil {
		return fmt.Errorf("bot: subscribe: %w", err)
	}

	g.Go(func() error { return b.listen(gctx, sub) })
	g.Go(func() error {
		err := b.gateway.Run(gctx)
		if err == nil && ctx.Err() == nil {
			// The gateway only returns nil on cancellation; stop siblings anyway.
			return errors.New("bot: gateway stopped")
		}
		if err != nil {
			return fmt.Errorf("bot: gateway: %w", err)
		}
		return context.Canceled
	})
	if b.opsAddr != "" {
		srv := ops.New(ops.Config{
			Addr:   b.opsAddr,
			Ready:  b.gateway.Ready,
			Status: func() any { return b.Status() },
		})
		g.Go(func() error { return srv.Run(gctx) })
	}

	b.logger.Info().Msg("bot started")
	err = g.Wait()
	b.logger.Info().Msg("bot stopped")
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (b *Bot) listen(ctx context.Context, sub bus.Subscriber) error {
	defer func() { _ = sub.Close() }()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.C():
			if !ok {
				return nil
			}
			if ev, ok := msg.(events.Event); ok {
				b.trigger(ctx, ev)
			}
		}
	}
}

// trigger runs every handler registered for ev in order.
func (b *Bot) trigger(ctx context.Context, ev events.Event) {
	name := ev.EventName()
	b.mu.RLock()
	hs := append([]Handler(nil), b.handlers[name]...)
	b.mu.RUnlock()

	for _, h := range hs {
		b.dispatched.Add(1)
		b.invoke(ctx, name, h, ev)
	}
}

func (b *Bot) invoke(ctx context.Context, name string, h Handler, ev events.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.failed.Add(1)
			metrics.IncHandlerError(name, "panic")
			b.logger.Error().
				Str(xlog.FieldEvent, name).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("event handler panicked")
		}
	}()
	if err := h(ctx, ev); err != nil {
		b.failed.Add(1)
		metrics.IncHandlerError(name, "error")
		logger := xlog.WithContext(ctx, b.logger)
		logger.Error().Err(err).Str(xlog.FieldEvent, name).Msg("event handler failed")
	}
}

// publish is the gateway's dispatcher: it hands ev to the bus, waiting at
// most publishTimeout on slow subscribers.
func (b *Bot) publish(ctx context.Context, ev events.Event) {
	pctx, cancel := context.WithTimeout(ctx, b.publishTimeout)
	defer cancel()
	if err := b.bus.Publish(pctx, ev.EventName(), ev); err != nil {
		b.logger.Debug().Err(err).Str(xlog.FieldEvent, ev.EventName()).Msg("event dropped")
	}
}

// Status is a point-in-time view of the bot.
type Status struct {
	Ready           bool    `json:"ready"`
	SessionID       string  `json:"session_id,omitempty"`
	Sequence        int64   `json:"sequence"`
	LatencyMS       float64 `json:"latency_ms"`
	Shard           [2]int  `json:"shard"`
	Handlers        int     `json:"handlers"`
	HandlerCalls    uint64  `json:"handler_calls"`
	HandlerFailures uint64  `json:"handler_failures"`
}

// Status snapshots the bot. The session id is masked.
func (b *Bot) Status() Status {
	st := b.gateway.SessionState()
	id, count := b.gateway.Shard()

	b.mu.RLock()
	n := 0
	for _, hs := range b.handlers {
		n += len(hs)
	}
	b.mu.RUnlock()

	return Status{
		Ready:           b.gateway.Ready(),
		SessionID:       maskSession(st.ID),
		Sequence:        st.Sequence,
		LatencyMS:       float64(b.gateway.Latency()) / float64(time.Millisecond),
		Shard:           [2]int{id, count},
		Handlers:        n,
		HandlerCalls:    b.dispatched.Load(),
		HandlerFailures: b.failed.Load(),
	}
}

func maskSession(id string) string {
	if len(id) <= 4 {
		return id
	}
	return id[:4] + "***"
}
