// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	xlog "github.com/ManuGH/retux/internal/log"
	"github.com/ManuGH/retux/internal/metrics"
	"github.com/ManuGH/retux/internal/telemetry"
	"github.com/ManuGH/retux/internal/version"
	"github.com/ManuGH/retux/pkg/events"
	"github.com/ManuGH/retux/pkg/resources"
)

const (
	DefaultURL     = "wss://gateway.discord.gg"
	DefaultVersion = 10

	compressZlibStream = "zlib-stream"
	writeTimeout       = 10 * time.Second

	// Discord allows 120 sends per 60s per connection. Commands stay at
	// 115 in any minute so heartbeats and IDENTIFY always fit.
	commandBurst  = 5
	commandPerMin = 110

	// CloseResumable is sent on shutdown when the session store outlives
	// the process; closing with 1000 or 1001 would invalidate the session.
	// Otherwise the session is ended with 1000 so the bot goes offline.
	CloseResumable = 4900
)

// Dispatcher receives events as they arrive. Dispatch runs on the read loop
// and must not block.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev events.Event)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, ev events.Event)

func (f DispatcherFunc) Dispatch(ctx context.Context, ev events.Event) { f(ctx, ev) }

// Client is a single gateway connection (one shard).
type Client struct {
	token          string
	intents        resources.Intents
	baseURL        string
	version        int
	compress       bool
	shard          *[2]int
	presence       *PresenceUpdate
	largeThreshold int

	dispatcher Dispatcher
	store      SessionStore
	dialer     *websocket.Dialer
	logger     zerolog.Logger
	tracer     trace.Tracer
	commands   *rate.Limiter

	backoffInitial time.Duration
	backoffMax     time.Duration
	invalidMin     time.Duration
	invalidMax     time.Duration
	jitter         func() float64

	running atomic.Bool

	writeMu sync.Mutex
	conn    *websocket.Conn

	mu       sync.RWMutex
	session  SessionState
	ready    bool
	latency  time.Duration
	lastBeat time.Time
	acked    bool
}

// New creates a gateway client. It does not connect until Run.
func New(token string, intents resources.Intents, opts ...Option) *Client {
	c := &Client{
		token:          token,
		intents:        intents,
		baseURL:        DefaultURL,
		version:        DefaultVersion,
		dialer:         &websocket.Dialer{Proxy: http.ProxyFromEnvironment, HandshakeTimeout: 15 * time.Second},
		logger:         xlog.WithComponent("gateway"),
		tracer:         telemetry.Tracer("github.com/ManuGH/retux/pkg/gateway"),
		commands:       rate.NewLimiter(rate.Every(time.Minute/commandPerMin), commandBurst),
		backoffInitial: time.Second,
		backoffMax:     2 * time.Minute,
		invalidMin:     time.Second,
		invalidMax:     5 * time.Second,
		jitter:         rand.Float64,
	}
	for _, opt := range opts {
		opt(c)
	}
	id, count := c.Shard()
	c.logger = c.logger.With().Str(xlog.FieldShard, fmt.Sprintf("%d/%d", id, count)).Logger()
	return c
}

// Shard returns the shard id and count; an unsharded client is 0 of 1.
func (c *Client) Shard() (int, int) {
	if c.shard == nil {
		return 0, 1
	}
	return c.shard[0], c.shard[1]
}

// Ready reports whether the current connection completed READY or RESUMED.
func (c *Client) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Latency is the round trip of the last acknowledged heartbeat.
func (c *Client) Latency() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latency
}

// SessionState returns the current session, empty before READY.
func (c *Client) SessionState() SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Run connects and keeps the session alive until ctx ends, which returns
// nil, or Discord closes with a fatal code, which returns a *CloseError.
func (c *Client) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errors.New("gateway: client is already running")
	}
	defer c.running.Store(false)

	c.loadSession(ctx)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.backoffInitial
	bo.MaxInterval = c.backoffMax

	for {
		established, err := c.connect(ctx)
		c.setReady(false)

		if ctx.Err() != nil {
			c.persist(context.WithoutCancel(ctx))
			c.logger.Info().Msg("gateway stopped")
			return nil
		}
		if established {
			bo.Reset()
		}

		delay := bo.NextBackOff()
		reason := "error"

		var closeErr *CloseError
		var invalid *invalidSessionError
		switch {
		case errors.As(err, &closeErr):
			if closeErr.Fatal() {
				c.logger.Error().Int(xlog.FieldCloseCode, closeErr.Code).Str("reason", closeErr.Reason).Msg("gateway closed with a fatal code")
				return closeErr
			}
			reason = "close_" + strconv.Itoa(closeErr.Code)
			if closeErr.InvalidatesSession() {
				c.clearSession(ctx)
			}
		case errors.As(err, &invalid):
			reason = "invalid_session"
			delay = 0
			if !invalid.resumable {
				c.clearSession(ctx)
				delay = c.invalidSessionDelay()
			}
		case errors.Is(err, ErrReconnect):
			reason = "reconnect"
			delay = 0
		case errors.Is(err, ErrZombie):
			reason = "zombie"
			delay = 0
		}

		metrics.IncReconnect(reason)
		c.logger.Warn().Err(err).Str("reason", reason).Dur("delay", delay).Msg("gateway connection lost, reconnecting")

		if err := sleep(ctx, delay); err != nil {
			c.persist(context.WithoutCancel(ctx))
			return nil
		}
	}
}

// connect runs one websocket connection to completion. established reports
// whether the connection reached READY or RESUMED.
func (c *Client) connect(ctx context.Context) (established bool, err error) {
	target, err := c.connectURL()
	if err != nil {
		return false, err
	}

	header := http.Header{"User-Agent": {version.UserAgent()}}
	conn, resp, err := c.dialer.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return false, fmt.Errorf("gateway: dial: %w", err)
	}
	c.logger.Debug().Str("url", target).Msg("gateway connected")

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()
	defer func() {
		c.writeMu.Lock()
		c.conn = nil
		c.writeMu.Unlock()
	}()

	var inf *inflater
	if c.compress {
		inf = newInflater()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.readLoop(gctx, g, conn, inf, &established)
	})
	g.Go(func() error {
		<-gctx.Done()
		c.closeConn(conn, ctx.Err() != nil)
		return nil
	})
	err = g.Wait()
	if inf != nil {
		inf.Close()
	}
	return established, err
}

func (c *Client) connectURL() (string, error) {
	base := c.baseURL
	if st := c.SessionState(); st.Resumable() && st.ResumeURL != "" {
		base = st.ResumeURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("gateway: parse url %q: %w", base, err)
	}
	q := u.Query()
	q.Set("v", strconv.Itoa(c.version))
	q.Set("encoding", "json")
	if c.compress {
		q.Set("compress", compressZlibStream)
	}
	u.RawQuery = q.Encode()
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

func (c *Client) closeConn(conn *websocket.Conn, shutdown bool) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if shutdown {
		code := websocket.CloseNormalClosure
		if storeIsDurable(c.store) {
			code = CloseResumable
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, "shutting down"),
			time.Now().Add(time.Second))
	}
	_ = conn.Close()
}

func (c *Client) readLoop(ctx context.Context, g *errgroup.Group, conn *websocket.Conn, inf *inflater, established *bool) error {
	var heartbeating bool
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return c.readError(ctx, err)
		}

		var p Payload
		if inf != nil && mt == websocket.BinaryMessage {
			var ok bool
			p, ok, err = inf.Feed(data)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		} else if err := json.Unmarshal(data, &p); err != nil {
			c.logger.Warn().Err(err).Msg("dropping undecodable gateway payload")
			continue
		}

		if p.S != nil {
			c.mu.Lock()
			c.session.Sequence = *p.S
			c.mu.Unlock()
		}
		metrics.IncGatewayPayload("in", p.Op.String())

		switch p.Op {
		case OpHello:
			if heartbeating {
				continue
			}
			var h Hello
			if err := json.Unmarshal(p.D, &h); err != nil || h.HeartbeatInterval <= 0 {
				return fmt.Errorf("gateway: bad HELLO payload %s", p.D)
			}
			interval := time.Duration(h.HeartbeatInterval) * time.Millisecond
			heartbeating = true
			c.mu.Lock()
			c.acked = true
			c.mu.Unlock()
			g.Go(func() error { return c.heartbeat(ctx, interval) })
			c.logger.Debug().Dur("interval", interval).Msg("heartbeat started")

			if c.SessionState().Resumable() {
				err = c.resume()
			} else {
				err = c.identify()
			}
			if err != nil {
				return err
			}

		case OpHeartbeat:
			if err := c.sendHeartbeat(); err != nil {
				return err
			}

		case OpHeartbeatAck:
			c.ack()

		case OpDispatch:
			if c.handleDispatch(ctx, p) {
				*established = true
			}

		case OpReconnect:
			c.dispatch(ctx, &events.Reconnect{})
			return ErrReconnect

		case OpInvalidSession:
			ev := &events.InvalidSession{}
			_ = json.Unmarshal(p.D, ev)
			c.dispatch(ctx, ev)
			return &invalidSessionError{resumable: ev.CanReconnect()}

		default:
			c.logger.Debug().Str(xlog.FieldOpcode, p.Op.String()).Msg("ignoring gateway payload")
		}
	}
}

func (c *Client) readError(ctx context.Context, err error) error {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return &CloseError{Code: ce.Code, Reason: ce.Text}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("gateway: read: %w", err)
}

// handleDispatch decodes and forwards a DISPATCH. It reports whether the
// event established the session.
func (c *Client) handleDispatch(ctx context.Context, p Payload) bool {
	metrics.IncDispatch(p.T)

	ev, err := events.Decode(p.T, p.D)
	if err != nil {
		c.logger.Warn().Err(err).Str(xlog.FieldEvent, p.T).Msg("event did not match its model, dispatching raw")
		ev = &events.Raw{Name: events.Normalize(p.T), Data: p.D}
	}

	established := false
	switch e := ev.(type) {
	case *events.Ready:
		c.mu.Lock()
		c.session.ID = e.SessionID
		c.session.ResumeURL = e.ResumeGatewayURL
		c.ready = true
		c.mu.Unlock()
		established = true
		metrics.IncSession("ready")
		c.logger.Info().Str(xlog.FieldSessionID, e.SessionID).Int("guilds", len(e.Guilds)).Msg("gateway ready")
		c.persist(ctx)
	case *events.Resumed:
		c.setReady(true)
		established = true
		st := c.SessionState()
		c.logger.Info().Str(xlog.FieldSessionID, st.ID).Int64(xlog.FieldSequence, st.Sequence).Msg("gateway session resumed")
		c.persist(ctx)
	}

	c.dispatch(ctx, ev)
	return established
}

func (c *Client) dispatch(ctx context.Context, ev events.Event) {
	if c.dispatcher == nil {
		return
	}
	id, _ := c.Shard()
	ctx, span := c.tracer.Start(ctx, "gateway dispatch "+ev.EventName(), trace.WithSpanKind(trace.SpanKindConsumer))
	span.SetAttributes(telemetry.DispatchAttributes(ev.EventName(), id)...)
	defer span.End()
	c.dispatcher.Dispatch(ctx, ev)
}

func (c *Client) identify() error {
	id := Identify{
		Token:   c.token,
		Intents: c.intents,
		Properties: IdentifyProperties{
			OS:      runtime.GOOS,
			Browser: "retux",
			Device:  "retux",
		},
		LargeThreshold: c.largeThreshold,
		Shard:          c.shard,
		Presence:       c.presence,
	}
	metrics.IncSession("identify")
	c.logger.Debug().Str("intents", c.intents.String()).Msg("sending IDENTIFY")
	return c.write(OpIdentify, id)
}

func (c *Client) resume() error {
	st := c.SessionState()
	metrics.IncSession("resume")
	c.logger.Debug().Str(xlog.FieldSessionID, st.ID).Int64(xlog.FieldSequence, st.Sequence).Msg("sending RESUME")
	return c.write(OpResume, Resume{Token: c.token, SessionID: st.ID, Seq: st.Sequence})
}

// heartbeat beats every interval. The first beat waits interval*jitter. A
// beat that finds the previous one unacknowledged reports a zombie.
func (c *Client) heartbeat(ctx context.Context, interval time.Duration) error {
	t := time.NewTimer(time.Duration(float64(interval) * c.jitter()))
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}

		c.mu.RLock()
		acked := c.acked
		c.mu.RUnlock()
		if !acked {
			c.logger.Warn().Msg("heartbeat was not acknowledged, connection is zombied")
			return ErrZombie
		}
		if err := c.sendHeartbeat(); err != nil {
			return err
		}
		c.persist(ctx)
		t.Reset(interval)
	}
}

func (c *Client) sendHeartbeat() error {
	c.mu.Lock()
	seq := c.session.Sequence
	c.lastBeat = time.Now()
	c.acked = false
	c.mu.Unlock()

	var d any
	if seq > 0 {
		d = seq
	}
	return c.write(OpHeartbeat, d)
}

func (c *Client) ack() {
	c.mu.Lock()
	c.acked = true
	if !c.lastBeat.IsZero() {
		c.latency = time.Since(c.lastBeat)
	}
	latency := c.latency
	c.mu.Unlock()

	metrics.SetHeartbeatLatency(latency)
	c.logger.Debug().Dur(xlog.FieldLatency, latency).Msg("heartbeat acknowledged")
}

func (c *Client) write(op Opcode, d any) error {
	data, err := json.Marshal(outgoing{Op: op, D: d})
	if err != nil {
		return fmt.Errorf("gateway: encode %s: %w", op, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("gateway: write %s: %w", op, err)
	}
	metrics.IncGatewayPayload("out", op.String())
	return nil
}

// send writes a user command through the command rate limiter.
func (c *Client) send(ctx context.Context, op Opcode, d any) error {
	if err := c.commands.Wait(ctx); err != nil {
		return fmt.Errorf("gateway: %s: %w", op, err)
	}
	return c.write(op, d)
}

// UpdatePresence changes the bot's status and activities.
func (c *Client) UpdatePresence(ctx context.Context, p PresenceUpdate) error {
	if p.Activities == nil {
		p.Activities = []Activity{}
	}
	if p.Status == "" {
		p.Status = StatusOnline
	}
	return c.send(ctx, OpPresenceUpdate, p)
}

// UpdateVoiceState joins, moves or leaves a voice channel.
func (c *Client) UpdateVoiceState(ctx context.Context, v VoiceStateUpdate) error {
	if v.GuildID.IsZero() {
		return errors.New("gateway: voice state update needs a guild id")
	}
	return c.send(ctx, OpVoiceStateUpdate, v)
}

// RequestGuildMembers asks Discord to stream members of a guild as
// GUILD_MEMBERS_CHUNK events.
func (c *Client) RequestGuildMembers(ctx context.Context, r RequestGuildMembers) error {
	if r.GuildID.IsZero() {
		return errors.New("gateway: request guild members needs a guild id")
	}
	if r.Query == nil && len(r.UserIDs) == 0 {
		return errors.New("gateway: request guild members needs a query or user ids")
	}
	return c.send(ctx, OpRequestGuildMembers, r)
}

func (c *Client) setReady(ready bool) {
	c.mu.Lock()
	c.ready = ready
	c.mu.Unlock()
}

func (c *Client) sessionKey() string {
	return SessionKey(c.Shard())
}

func (c *Client) loadSession(ctx context.Context) {
	if c.store == nil {
		return
	}
	st, ok, err := c.store.Load(ctx, c.sessionKey())
	if err != nil {
		c.logger.Warn().Err(err).Msg("could not load stored session, identifying")
		return
	}
	if !ok || !st.Resumable() {
		return
	}
	c.mu.Lock()
	c.session = st
	c.mu.Unlock()
	c.logger.Info().Str(xlog.FieldSessionID, st.ID).Int64(xlog.FieldSequence, st.Sequence).Msg("resuming stored session")
}

func (c *Client) persist(ctx context.Context) {
	if c.store == nil {
		return
	}
	st := c.SessionState()
	if !st.Resumable() {
		return
	}
	if err := c.store.Save(ctx, c.sessionKey(), st); err != nil {
		c.logger.Warn().Err(err).Msg("could not persist session")
	}
}

func (c *Client) clearSession(ctx context.Context) {
	c.mu.Lock()
	c.session = SessionState{}
	c.mu.Unlock()
	if c.store == nil {
		return
	}
	if err := c.store.Clear(ctx, c.sessionKey()); err != nil {
		c.logger.Warn().Err(err).Msg("could not clear stored session")
	}
}

func (c *Client) invalidSessionDelay() time.Duration {
	if c.invalidMax <= c.invalidMin {
		return c.invalidMin
	}
	return c.invalidMin + rand.N(c.invalidMax-c.invalidMin)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
