// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"

	"github.com/ManuGH/retux/pkg/events"
)

// fakeGateway is a scripted websocket server. script runs once per accepted
// connection with its zero-based index.
type fakeGateway struct {
	t       *testing.T
	srv     *httptest.Server
	conns   atomic.Int32
	mu      sync.Mutex
	queries []url.Values
	script  func(n int, fc *fakeConn)
}

func newFakeGateway(t *testing.T, script func(n int, fc *fakeConn)) *fakeGateway {
	t.Helper()
	fg := &fakeGateway{t: t, script: script}
	upgrader := websocket.Upgrader{}
	fg.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer func() { _ = ws.Close() }()

		fg.mu.Lock()
		fg.queries = append(fg.queries, r.URL.Query())
		fg.mu.Unlock()

		fc := &fakeConn{t: t, ws: ws, url: "ws://" + r.Host}
		if r.URL.Query().Get("compress") == compressZlibStream {
			fc.zw = zlib.NewWriter(&fc.buf)
		}
		fg.script(int(fg.conns.Add(1)-1), fc)
	}))
	t.Cleanup(fg.srv.Close)
	return fg
}

func (fg *fakeGateway) URL() string {
	return "ws" + strings.TrimPrefix(fg.srv.URL, "http")
}

func (fg *fakeGateway) Query(n int) url.Values {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	if n >= len(fg.queries) {
		return nil
	}
	return fg.queries[n]
}

type fakeConn struct {
	t   *testing.T
	ws  *websocket.Conn
	url string
	zw  *zlib.Writer
	buf bytes.Buffer
}

func (fc *fakeConn) send(op Opcode, d any, seq int64, name string) {
	raw, err := json.Marshal(d)
	assert.NoError(fc.t, err)
	p := Payload{Op: op, D: raw, T: name}
	if seq > 0 {
		p.S = &seq
	}
	data, err := json.Marshal(p)
	assert.NoError(fc.t, err)

	if fc.zw == nil {
		_ = fc.ws.WriteMessage(websocket.TextMessage, data)
		return
	}
	fc.buf.Reset()
	_, _ = fc.zw.Write(data)
	_ = fc.zw.Flush()
	_ = fc.ws.WriteMessage(websocket.BinaryMessage, append([]byte(nil), fc.buf.Bytes()...))
}

func (fc *fakeConn) hello(interval time.Duration) {
	fc.send(OpHello, Hello{HeartbeatInterval: interval.Milliseconds()}, 0, "")
}

func (fc *fakeConn) dispatch(name string, seq int64, d any) {
	fc.send(OpDispatch, d, seq, name)
}

// expect reads until a payload with op arrives. Heartbeats are skipped
// unless op is OpHeartbeat.
func (fc *fakeConn) expect(op Opcode) (Payload, bool) {
	for {
		_ = fc.ws.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := fc.ws.ReadMessage()
		if err != nil {
			assert.Failf(fc.t, "read failed", "waiting for %s: %v", op, err)
			return Payload{}, false
		}
		var p Payload
		if !assert.NoError(fc.t, json.Unmarshal(data, &p)) {
			return Payload{}, false
		}
		if p.Op == op {
			return p, true
		}
		if p.Op != OpHeartbeat {
			assert.Failf(fc.t, "unexpected opcode", "want %s, got %s", op, p.Op)
			return p, false
		}
	}
}

// waitClose drains the connection until the client closes it and returns
// the close code, or -1 when the socket dropped without a close frame.
func (fc *fakeConn) waitClose() int {
	for {
		_ = fc.ws.SetReadDeadline(time.Now().Add(5 * time.Second))
		if _, _, err := fc.ws.ReadMessage(); err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				return ce.Code
			}
			return -1
		}
	}
}

func (fc *fakeConn) close(code int, reason string) {
	_ = fc.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
}

// recorder collects dispatched events.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
	notify chan string
}

func newRecorder() *recorder {
	return &recorder{notify: make(chan string, 64)}
}

func (r *recorder) Dispatch(_ context.Context, ev events.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	r.notify <- ev.EventName()
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.EventName())
	}
	return out
}

// waitFor blocks until name is dispatched.
func (r *recorder) waitFor(t *testing.T, name string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-r.notify:
			if got == name {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s, saw %v", name, r.names())
		}
	}
}

// memStore is an in-memory SessionStore.
type memStore struct {
	mu     sync.Mutex
	states map[string]SessionState
	saves  int
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]SessionState)}
}

func (m *memStore) Load(_ context.Context, key string) (SessionState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[key]
	return st, ok, nil
}

func (m *memStore) Save(_ context.Context, key string, st SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[key] = st
	m.saves++
	return nil
}

func (m *memStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, key)
	return nil
}

func (m *memStore) get(key string) (SessionState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[key]
	return st, ok
}

// processStore is a memStore that does not outlive the process.
type processStore struct{ *memStore }

func (processStore) Durable() bool { return false }

func readyPayload(sessionID, resumeURL string) map[string]any {
	return map[string]any{
		"v":                  10,
		"user":               map[string]any{"id": "42", "username": "retux"},
		"guilds":             []any{},
		"session_id":         sessionID,
		"resume_gateway_url": resumeURL,
		"application":        map[string]any{"id": "42", "flags": 0},
	}
}
