// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// DefaultWriteTimeout bounds a single send to a connection
const DefaultWriteTimeout = 5 * time.Second

type deadlineWriter interface {
	SetWriteDeadline(t time.Time) error
}

// JSONPeer writes JSON values to a connection, one at a time.
// When the underlying writer supports write deadlines (websocket.Conn,
// net.Conn) every send is bounded by the configured timeout.
type JSONPeer struct {
	voterID string
	timeout time.Duration

	mu      sync.Mutex
	w       io.Writer
	encoder *json.Encoder
}

func NewJSONPeer(voterID string, w io.Writer, timeout time.Duration) *JSONPeer {
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	return &JSONPeer{
		voterID: voterID,
		timeout: timeout,
		w:       w,
		encoder: json.NewEncoder(w),
	}
}

func (p *JSONPeer) VoterID() string {
	return p.voterID
}

func (p *JSONPeer) Send(v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if dw, ok := p.w.(deadlineWriter); ok {
		if err := dw.SetWriteDeadline(time.Now().Add(p.timeout)); err != nil {
			return err
		}
		defer func() { _ = dw.SetWriteDeadline(time.Time{}) }()
	}
	return p.encoder.Encode(v)
}
