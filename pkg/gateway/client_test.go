// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/retux/pkg/events"
	"github.com/ManuGH/retux/pkg/resources"
)

func newTestClient(fg *fakeGateway, rec *recorder, opts ...Option) *Client {
	base := []Option{
		WithURL(fg.URL()),
		WithDispatcher(rec),
		WithJitter(func() float64 { return 0.5 }),
		WithBackoff(time.Millisecond, 5*time.Millisecond),
		WithInvalidSessionWait(time.Millisecond, 2*time.Millisecond),
	}
	return New("test-token", resources.IntentsDefault, append(base, opts...)...)
}

func runClient(ctx context.Context, c *Client) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()
	return errCh
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestClient_IdentifyDispatchAndFatalClose(t *testing.T) {
	fg := newFakeGateway(t, func(n int, fc *fakeConn) {
		fc.hello(10 * time.Second)
		p, ok := fc.expect(OpIdentify)
		if !ok {
			return
		}
		var id Identify
		assert.NoError(t, json.Unmarshal(p.D, &id))
		assert.Equal(t, "test-token", id.Token)
		assert.Equal(t, resources.IntentsDefault, id.Intents)
		assert.Equal(t, "retux", id.Properties.Browser)
		assert.Equal(t, "retux", id.Properties.Device)
		assert.Nil(t, id.Shard)

		fc.dispatch("READY", 1, readyPayload("sess", "wss://resume.example"))
		fc.dispatch("MESSAGE_CREATE", 2, map[string]any{"id": "7", "channel_id": "8", "content": "hi", "timestamp": "2024-01-01T00:00:00Z"})
		fc.close(CloseAuthenticationFailed, "Authentication failed.")
		fc.waitClose()
	})
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	rec := newRecorder()
	c := newTestClient(fg, rec)

	err := waitErr(t, runClient(context.Background(), c))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	var closeErr *CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.True(t, closeErr.Fatal())

	assert.Equal(t, []string{events.NameReady, events.NameMessageCreate}, rec.names())
	assert.Equal(t, SessionState{ID: "sess", Sequence: 2, ResumeURL: "wss://resume.example"}, c.SessionState())
	assert.False(t, c.Ready())

	q := fg.Query(0)
	assert.Equal(t, "10", q.Get("v"))
	assert.Equal(t, "json", q.Get("encoding"))
	assert.Empty(t, q.Get("compress"))
}

func TestClient_ReconnectResumesOnResumeURL(t *testing.T) {
	closeCodes := make(chan int, 2)
	fg := newFakeGateway(t, func(n int, fc *fakeConn) {
		fc.hello(10 * time.Second)
		switch n {
		case 0:
			if _, ok := fc.expect(OpIdentify); !ok {
				return
			}
			fc.dispatch("READY", 1, readyPayload("sess", fc.url+"/?resumed=1"))
			fc.send(OpReconnect, nil, 0, "")
		case 1:
			p, ok := fc.expect(OpResume)
			if !ok {
				return
			}
			var r Resume
			assert.NoError(t, json.Unmarshal(p.D, &r))
			assert.Equal(t, Resume{Token: "test-token", SessionID: "sess", Seq: 1}, r)
			fc.dispatch("RESUMED", 2, map[string]any{})
		}
		closeCodes <- fc.waitClose()
	})

	rec := newRecorder()
	c := newTestClient(fg, rec)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := runClient(ctx, c)

	rec.waitFor(t, events.NameResumed)
	assert.True(t, c.Ready())
	cancel()
	require.NoError(t, waitErr(t, errCh))

	assert.Equal(t, []string{events.NameReady, events.NameReconnect, events.NameResumed}, rec.names())
	assert.Equal(t, "1", fg.Query(1).Get("resumed"), "second connection must use the resume URL")
	assert.Equal(t, "10", fg.Query(1).Get("v"))

	<-closeCodes
	assert.Equal(t, 1000, <-closeCodes, "shutdown without a store closes normally")
}

func TestClient_InvalidSessionIdentifiesAgain(t *testing.T) {
	fg := newFakeGateway(t, func(n int, fc *fakeConn) {
		fc.hello(10 * time.Second)
		if _, ok := fc.expect(OpIdentify); !ok {
			return
		}
		if n == 0 {
			fc.dispatch("READY", 1, readyPayload("sess-1", ""))
			fc.send(OpInvalidSession, false, 0, "")
		} else {
			fc.dispatch("READY", 1, readyPayload("sess-2", ""))
		}
		fc.waitClose()
	})

	rec := newRecorder()
	c := newTestClient(fg, rec)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := runClient(ctx, c)

	rec.waitFor(t, events.NameReady)
	rec.waitFor(t, events.NameInvalidSession)
	rec.waitFor(t, events.NameReady)
	cancel()
	require.NoError(t, waitErr(t, errCh))

	assert.Equal(t, "sess-2", c.SessionState().ID)
	ev := rec.events[1].(*events.InvalidSession)
	assert.False(t, ev.CanReconnect())
}

func TestClient_ZombieConnectionResumes(t *testing.T) {
	fg := newFakeGateway(t, func(n int, fc *fakeConn) {
		switch n {
		case 0:
			fc.hello(150 * time.Millisecond)
			if _, ok := fc.expect(OpIdentify); !ok {
				return
			}
			fc.dispatch("READY", 1, readyPayload("sess", ""))
		case 1:
			fc.hello(10 * time.Second)
			if _, ok := fc.expect(OpResume); !ok {
				return
			}
			fc.dispatch("RESUMED", 2, map[string]any{})
		}
		fc.waitClose()
	})

	rec := newRecorder()
	c := newTestClient(fg, rec, WithJitter(func() float64 { return 0 }))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := runClient(ctx, c)

	rec.waitFor(t, events.NameResumed)
	cancel()
	require.NoError(t, waitErr(t, errCh))
	assert.Equal(t, int32(2), fg.conns.Load())
}

func TestClient_HeartbeatRequestAckAndCommands(t *testing.T) {
	fg := newFakeGateway(t, func(n int, fc *fakeConn) {
		fc.hello(10 * time.Second)
		if _, ok := fc.expect(OpIdentify); !ok {
			return
		}
		fc.dispatch("READY", 3, readyPayload("sess", ""))

		p, ok := fc.expect(OpPresenceUpdate)
		if !ok {
			return
		}
		var pu PresenceUpdate
		assert.NoError(t, json.Unmarshal(p.D, &pu))
		assert.Equal(t, StatusIdle, pu.Status)
		assert.NotNil(t, pu.Activities)

		fc.send(OpHeartbeat, nil, 0, "")
		p, ok = fc.expect(OpHeartbeat)
		if !ok {
			return
		}
		assert.JSONEq(t, "3", string(p.D))
		fc.send(OpHeartbeatAck, nil, 0, "")
		fc.waitClose()
	})

	rec := newRecorder()
	c := newTestClient(fg, rec)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := runClient(ctx, c)

	rec.waitFor(t, events.NameReady)
	require.NoError(t, c.UpdatePresence(ctx, PresenceUpdate{Status: StatusIdle}))
	assert.Eventually(t, func() bool { return c.Latency() > 0 }, 5*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, waitErr(t, errCh))
}

func TestClient_ZlibStream(t *testing.T) {
	fg := newFakeGateway(t, func(n int, fc *fakeConn) {
		fc.hello(10 * time.Second)
		if _, ok := fc.expect(OpIdentify); !ok {
			return
		}
		fc.dispatch("READY", 1, readyPayload("sess", ""))
		fc.dispatch("TYPING_START", 2, map[string]any{"channel_id": "1", "user_id": "2", "timestamp": 1700000000})
		fc.waitClose()
	})

	rec := newRecorder()
	c := newTestClient(fg, rec, WithCompression(true))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := runClient(ctx, c)

	rec.waitFor(t, events.NameTypingStart)
	cancel()
	require.NoError(t, waitErr(t, errCh))

	assert.Equal(t, compressZlibStream, fg.Query(0).Get("compress"))
	assert.Equal(t, int64(2), c.SessionState().Sequence)
}

func TestClient_StoredSessionIsResumedAndPersisted(t *testing.T) {
	closeCodes := make(chan int, 1)
	fg := newFakeGateway(t, func(n int, fc *fakeConn) {
		fc.hello(10 * time.Second)
		p, ok := fc.expect(OpResume)
		if !ok {
			return
		}
		var r Resume
		assert.NoError(t, json.Unmarshal(p.D, &r))
		assert.Equal(t, "stored", r.SessionID)
		assert.Equal(t, int64(42), r.Seq)
		fc.dispatch("RESUMED", 43, map[string]any{})
		closeCodes <- fc.waitClose()
	})

	key := SessionKey(0, 1)
	store := newMemStore()
	require.NoError(t, store.Save(context.Background(), key, SessionState{ID: "stored", Sequence: 42, ResumeURL: fg.URL()}))

	rec := newRecorder()
	c := newTestClient(fg, rec, WithURL("ws://127.0.0.1:1"), WithSessionStore(store))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := runClient(ctx, c)

	rec.waitFor(t, events.NameResumed)
	cancel()
	require.NoError(t, waitErr(t, errCh))

	assert.Equal(t, CloseResumable, <-closeCodes)
	st, ok := store.get(key)
	require.True(t, ok)
	assert.Equal(t, SessionState{ID: "stored", Sequence: 43, ResumeURL: fg.URL()}, st)
}

func TestClient_ProcessLocalStoreClosesNormally(t *testing.T) {
	closeCodes := make(chan int, 1)
	fg := newFakeGateway(t, func(n int, fc *fakeConn) {
		fc.hello(10 * time.Second)
		if _, ok := fc.expect(OpIdentify); !ok {
			return
		}
		fc.dispatch("READY", 1, readyPayload("sess", fc.url))
		closeCodes <- fc.waitClose()
	})

	store := processStore{newMemStore()}
	rec := newRecorder()
	c := newTestClient(fg, rec, WithSessionStore(store))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := runClient(ctx, c)

	rec.waitFor(t, events.NameReady)
	cancel()
	require.NoError(t, waitErr(t, errCh))

	assert.Equal(t, 1000, <-closeCodes, "a session that dies with the process is ended")
	_, ok := store.get(SessionKey(0, 1))
	assert.True(t, ok, "the state is still saved for in-process reconnects")
}

func TestClient_CommandsRequireConnection(t *testing.T) {
	c := New("t", resources.IntentsDefault)
	ctx := context.Background()

	assert.ErrorIs(t, c.UpdatePresence(ctx, PresenceUpdate{}), ErrNotConnected)
	assert.Error(t, c.UpdateVoiceState(ctx, VoiceStateUpdate{}))
	assert.Error(t, c.RequestGuildMembers(ctx, RequestGuildMembers{GuildID: 1}))
	query := ""
	assert.ErrorIs(t, c.RequestGuildMembers(ctx, RequestGuildMembers{GuildID: 1, Query: &query}), ErrNotConnected)
}

func TestClient_ShardAndURL(t *testing.T) {
	c := New("t", resources.IntentsDefault, WithShard(1, 4), WithCompression(true), WithVersion(9))
	id, count := c.Shard()
	assert.Equal(t, 1, id)
	assert.Equal(t, 4, count)

	u, err := c.connectURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://gateway.discord.gg/?compress=zlib-stream&encoding=json&v=9", u)

	ignored := New("t", resources.IntentsDefault, WithShard(4, 4))
	id, count = ignored.Shard()
	assert.Equal(t, 0, id)
	assert.Equal(t, 1, count)
}
