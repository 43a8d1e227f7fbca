// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/websocket"

	"github.com/danielhkuo/daily-pick/hub"
	"github.com/danielhkuo/daily-pick/identity"
	"github.com/danielhkuo/daily-pick/middleware"
	"github.com/danielhkuo/daily-pick/votes"
)

const (
	// MaxFrameBytes is the largest inbound frame a connection accepts
	MaxFrameBytes = 16 << 10
	// MaxDecodeErrors consecutive bad frames close the connection
	MaxDecodeErrors = 3

	serverErrorMessage = "server error"
)

// Service is the poll operations a stream connection drives
type Service interface {
	// Connect registers p for updates and sends it the initial state
	Connect(ctx context.Context, p hub.Peer) error
	Disconnect(p hub.Peer)
	Apply(ctx context.Context, voter identity.Voter, cmd Command, origin hub.Peer) error
}

type Options struct {
	WriteTimeout time.Duration
	// AllowedOrigins are the cross-site origins that may open a stream in
	// addition to this host
	AllowedOrigins []string
}

// Handler upgrades GET requests to websocket connections
type Handler struct {
	svc  Service
	opts Options
}

func NewHandler(svc Service, opts Options) *Handler {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = hub.DefaultWriteTimeout
	}
	return &Handler{svc: svc, opts: opts}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	voter, ok := identity.FromContext(r.Context())
	if !ok {
		voter = identity.Resolve(r)
		r = r.WithContext(identity.WithVoter(r.Context(), voter))
	}

	server := websocket.Server{
		// Browsers attach the voter cookie to cross-site upgrades, so the
		// origin is checked before the connection acts for the voter. A new
		// voter gets its cookie on the handshake response.
		Handshake: func(cfg *websocket.Config, req *http.Request) error {
			origin := req.Header.Get("Origin")
			if !middleware.OriginAllowed(origin, req.Host, h.opts.AllowedOrigins) {
				slog.Warn("rejected stream from foreign origin", "origin", origin, "voter_id", voter.ID)
				return fmt.Errorf("origin %q not allowed", origin)
			}
			if voter.New {
				if cfg.Header == nil {
					cfg.Header = http.Header{}
				}
				cfg.Header.Add("Set-Cookie", identity.Cookie(voter.ID).String())
			}
			return nil
		},
		Handler: func(conn *websocket.Conn) {
			h.serveConn(conn, voter)
		},
	}
	server.ServeHTTP(w, r)
}

func (h *Handler) serveConn(conn *websocket.Conn, voter identity.Voter) {
	defer func() {
		_ = conn.Close()
	}()
	conn.MaxPayloadBytes = MaxFrameBytes

	ctx := conn.Request().Context()
	peer := hub.NewJSONPeer(voter.ID, conn, h.opts.WriteTimeout)

	if err := h.svc.Connect(ctx, peer); err != nil {
		slog.Error("failed to initialize stream", "voter_id", voter.ID, "error", err)
		_ = peer.Send(ErrorEvent{Message: Describe(err)})
		return
	}
	defer h.svc.Disconnect(peer)

	slog.Info("stream connected", "voter_id", voter.ID, "remote", voter.Addr)
	defer slog.Info("stream closed", "voter_id", voter.ID)

	decodeErrors := 0
	for {
		var frame []byte
		if err := websocket.Message.Receive(conn, &frame); err != nil {
			if errors.Is(err, websocket.ErrFrameTooLarge) {
				decodeErrors++
				_ = peer.Send(ErrorEvent{Message: "payload too large"})
				if decodeErrors >= MaxDecodeErrors {
					return
				}
				continue
			}
			if !errors.Is(err, io.EOF) {
				slog.Debug("stream read failed", "voter_id", voter.ID, "error", err)
			}
			return
		}

		cmd, err := DecodeCommand(frame)
		if err != nil {
			decodeErrors++
			_ = peer.Send(ErrorEvent{Message: Describe(err)})
			if decodeErrors >= MaxDecodeErrors {
				slog.Warn("closing stream after repeated bad frames", "voter_id", voter.ID)
				return
			}
			continue
		}
		decodeErrors = 0

		if err := h.svc.Apply(ctx, voter, cmd, peer); err != nil {
			msg := Describe(err)
			if msg == serverErrorMessage {
				slog.Error("stream command failed", "voter_id", voter.ID, "command", cmd.commandType(), "error", err)
			}
			if sendErr := peer.Send(ErrorEvent{Message: msg}); sendErr != nil {
				return
			}
		}
	}
}

// Describe turns an operation error into a message safe to show a client.
// Only rejections of the client's own input are described; storage and
// other internal failures are reported generically.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownCommand):
		return "unsupported message type"
	case errors.Is(err, ErrMalformedFrame):
		return "invalid message payload"
	case errors.Is(err, votes.ErrInvalidInput),
		errors.Is(err, votes.ErrDuplicateOption),
		errors.Is(err, votes.ErrUnknownOption):
		return err.Error()
	default:
		return serverErrorMessage
	}
}
