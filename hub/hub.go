// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"log/slog"
	"sync"
)

// Peer is a live streaming connection
type Peer interface {
	// VoterID returns the anonymous voter bound to the connection
	VoterID() string
	// Send writes one event; an error means the connection is gone
	Send(v any) error
}

// Hub holds the set of live connections
type Hub struct {
	mu    sync.Mutex
	peers map[Peer]struct{}
}

func New() *Hub {
	return &Hub{peers: make(map[Peer]struct{})}
}

// Register adds p to the broadcast set
func (h *Hub) Register(p Peer) {
	h.mu.Lock()
	h.peers[p] = struct{}{}
	n := len(h.peers)
	h.mu.Unlock()

	slog.Debug("peer registered", "voter_id", p.VoterID(), "peers", n)
}

// Unregister removes p. It reports whether p was registered.
func (h *Hub) Unregister(p Peer) bool {
	h.mu.Lock()
	_, ok := h.peers[p]
	delete(h.peers, p)
	h.mu.Unlock()
	return ok
}

// Len returns the number of registered peers
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

func (h *Hub) snapshot(except Peer) []Peer {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Peer, 0, len(h.peers))
	for p := range h.peers {
		if except != nil && p == except {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Broadcast sends to every registered peer other than except. build
// produces the per-recipient payload; returning false skips the peer.
// Sends run concurrently outside the hub lock, and a peer whose send
// fails is evicted. Broadcast returns the number of successful sends.
func (h *Hub) Broadcast(except Peer, build func(Peer) (any, bool)) int {
	targets := h.snapshot(except)
	if len(targets) == 0 {
		return 0
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		delivered int
	)
	for _, p := range targets {
		msg, ok := build(p)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(p Peer, msg any) {
			defer wg.Done()
			if err := p.Send(msg); err != nil {
				if h.Unregister(p) {
					slog.Debug("peer evicted", "voter_id", p.VoterID(), "error", err)
				}
				return
			}
			mu.Lock()
			delivered++
			mu.Unlock()
		}(p, msg)
	}
	wg.Wait()
	return delivered
}
