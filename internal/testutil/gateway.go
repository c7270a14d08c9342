// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package testutil holds test doubles shared across packages.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

// Gateway is a scripted Discord gateway. Each connection gets HELLO, and
// after IDENTIFY or RESUME the scripted dispatches with increasing
// sequence numbers. The connection then idles until the client leaves,
// or is closed with CloseCode when set.
type Gateway struct {
	Server *httptest.Server

	// CloseCode, when non-zero, closes every connection with that code
	// instead of sending dispatches.
	CloseCode int

	dispatches  []map[string]any
	connections atomic.Int32
	identifies  atomic.Int32
}

// NewGateway starts a fake gateway; it stops with the test.
func NewGateway(t *testing.T, dispatches ...map[string]any) *Gateway {
	t.Helper()
	g := &Gateway{dispatches: dispatches}
	upgrader := websocket.Upgrader{}
	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()
		g.connections.Add(1)
		g.serve(conn)
	}))
	t.Cleanup(g.Server.Close)
	return g
}

func (g *Gateway) serve(conn *websocket.Conn) {
	if err := conn.WriteJSON(map[string]any{"op": 10, "d": map[string]any{"heartbeat_interval": 45000}}); err != nil {
		return
	}
	var hello struct {
		Op int `json:"op"`
	}
	if err := conn.ReadJSON(&hello); err != nil {
		return
	}
	if hello.Op == 2 {
		g.identifies.Add(1)
	}
	if g.CloseCode != 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(g.CloseCode, "closed by test"))
		return
	}
	for i, d := range g.dispatches {
		payload := map[string]any{"op": 0, "s": i + 1}
		for k, v := range d {
			payload[k] = v
		}
		if err := conn.WriteJSON(payload); err != nil {
			return
		}
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// URL is the ws:// address of the gateway.
func (g *Gateway) URL() string {
	return "ws" + strings.TrimPrefix(g.Server.URL, "http")
}

// Connections counts accepted websocket connections.
func (g *Gateway) Connections() int { return int(g.connections.Load()) }

// Identifies counts IDENTIFY payloads received.
func (g *Gateway) Identifies() int { return int(g.identifies.Load()) }

// Ready builds a READY dispatch.
func Ready(sessionID string) map[string]any {
	return map[string]any{"t": "READY", "d": map[string]any{
		"v":                  10,
		"user":               map[string]any{"id": "42", "username": "retux"},
		"guilds":             []any{},
		"session_id":         sessionID,
		"resume_gateway_url": "",
		"application":        map[string]any{"id": "42", "flags": 0},
	}}
}

// MessageCreate builds a MESSAGE_CREATE dispatch.
func MessageCreate(channelID, content string) map[string]any {
	return map[string]any{"t": "MESSAGE_CREATE", "d": map[string]any{
		"id":         "100",
		"channel_id": channelID,
		"content":    content,
	}}
}
