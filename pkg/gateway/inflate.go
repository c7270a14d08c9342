// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// zlibSuffix ends every complete zlib-stream message (a sync flush).
var zlibSuffix = []byte{0x00, 0x00, 0xff, 0xff}

var errInflaterClosed = errors.New("gateway: inflater closed")

type decoded struct {
	payload Payload
	err     error
}

// inflater decodes a zlib-stream connection. Discord compresses the whole
// connection as one deflate stream, so a single decompressor must see every
// message in order. Compressed bytes are fed through a pipe to a goroutine
// that owns the decompressor and a JSON decoder.
type inflater struct {
	pw      *io.PipeWriter
	results chan decoded
	done    chan struct{}

	// tail holds the last len(zlibSuffix) bytes fed, so a suffix split
	// across websocket messages is still recognised.
	tail []byte
}

func newInflater() *inflater {
	pr, pw := io.Pipe()
	inf := &inflater{
		pw:      pw,
		results: make(chan decoded, 1),
		done:    make(chan struct{}),
	}
	go inf.run(pr)
	return inf
}

func (inf *inflater) run(pr *io.PipeReader) {
	defer close(inf.done)

	zr, err := zlib.NewReader(pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		inf.results <- decoded{err: fmt.Errorf("zlib header: %w", err)}
		return
	}
	defer func() { _ = zr.Close() }()

	dec := json.NewDecoder(zr)
	for {
		var p Payload
		if err := dec.Decode(&p); err != nil {
			_ = pr.CloseWithError(err)
			if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, io.EOF) {
				return
			}
			inf.results <- decoded{err: fmt.Errorf("inflate payload: %w", err)}
			return
		}
		inf.results <- decoded{payload: p}
	}
}

// Feed writes one websocket message. It returns ok=false when the message is
// a fragment and more data is needed before a payload is complete.
func (inf *inflater) Feed(msg []byte) (Payload, bool, error) {
	if _, err := inf.pw.Write(msg); err != nil {
		select {
		case r := <-inf.results:
			if r.err != nil {
				return Payload{}, false, r.err
			}
		default:
		}
		return Payload{}, false, fmt.Errorf("feed inflater: %w", err)
	}
	inf.tail = append(inf.tail, msg...)
	if n := len(inf.tail) - len(zlibSuffix); n > 0 {
		inf.tail = append(inf.tail[:0], inf.tail[n:]...)
	}
	if !bytes.Equal(inf.tail, zlibSuffix) {
		return Payload{}, false, nil
	}
	inf.tail = inf.tail[:0]
	select {
	case r := <-inf.results:
		return r.payload, r.err == nil, r.err
	case <-inf.done:
		select {
		case r := <-inf.results:
			return r.payload, r.err == nil, r.err
		default:
			return Payload{}, false, errInflaterClosed
		}
	}
}

// Close stops the decoding goroutine and waits for it.
func (inf *inflater) Close() {
	_ = inf.pw.CloseWithError(io.ErrClosedPipe)
	for {
		select {
		case <-inf.results:
		case <-inf.done:
			return
		}
	}
}
