// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func compressStream(t *testing.T, messages ...string) [][]byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	out := make([][]byte, 0, len(messages))
	for _, m := range messages {
		buf.Reset()
		_, err := zw.Write([]byte(m))
		require.NoError(t, err)
		require.NoError(t, zw.Flush())
		out = append(out, append([]byte(nil), buf.Bytes()...))
	}
	return out
}

func TestInflater_SharedContextAcrossMessages(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	msgs := compressStream(t,
		`{"op":10,"d":{"heartbeat_interval":41250}}`,
		`{"op":0,"d":{"v":10},"s":1,"t":"READY"}`,
		`{"op":11,"d":null}`,
	)

	inf := newInflater()
	defer inf.Close()

	p, ok, err := inf.Feed(msgs[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, OpHello, p.Op)

	p, ok, err = inf.Feed(msgs[1])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "READY", p.T)
	require.NotNil(t, p.S)
	assert.Equal(t, int64(1), *p.S)

	p, ok, err = inf.Feed(msgs[2])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, OpHeartbeatAck, p.Op)
}

func TestInflater_FragmentedMessage(t *testing.T) {
	msg := compressStream(t, `{"op":11,"d":null}`)[0]
	require.True(t, bytes.HasSuffix(msg, zlibSuffix))

	inf := newInflater()
	defer inf.Close()

	split := len(msg) - 2
	_, ok, err := inf.Feed(msg[:split])
	require.NoError(t, err)
	assert.False(t, ok, "a fragment without the flush suffix is not a payload")

	p, ok, err := inf.Feed(msg[split:])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, OpHeartbeatAck, p.Op)
}

func TestInflater_SuffixSplitAcrossMessagesKeepsAlignment(t *testing.T) {
	msgs := compressStream(t,
		`{"op":11,"d":null}`,
		`{"op":0,"d":{"content":"hi"},"s":2,"t":"MESSAGE_CREATE"}`,
	)

	inf := newInflater()
	defer inf.Close()

	split := len(msgs[0]) - 3
	_, ok, err := inf.Feed(msgs[0][:split])
	require.NoError(t, err)
	assert.False(t, ok)

	p, ok, err := inf.Feed(msgs[0][split:])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, OpHeartbeatAck, p.Op)

	p, ok, err = inf.Feed(msgs[1])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, OpDispatch, p.Op)
	assert.Equal(t, "MESSAGE_CREATE", p.T)
}

func TestInflater_CorruptStream(t *testing.T) {
	inf := newInflater()
	defer inf.Close()

	_, _, err := inf.Feed(append([]byte("not zlib"), zlibSuffix...))
	assert.Error(t, err)
}
