// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/daily-pick/models"
)

const (
	CookieName   = "userId"
	CookieMaxAge = 365 * 24 * time.Hour
)

// Voter is the anonymous identity attached to a request or connection
type Voter struct {
	ID   string
	Addr string
	Meta models.ClientMeta
	// New is set when ID was minted for this request and the cookie still
	// has to reach the client
	New bool
}

type voterContextKey struct{}

// Resolve returns the voter for r, reusing a previously issued id when the
// request carries one and minting a fresh one otherwise
func Resolve(r *http.Request) Voter {
	v := Voter{
		Addr: ClientIP(r),
		Meta: ParseUserAgent(r.UserAgent()),
	}
	if c, err := r.Cookie(CookieName); err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(c.Value)); err == nil {
			v.ID = id.String()
			return v
		}
	}
	v.ID = NewID()
	v.New = true
	return v
}

// NewID mints a globally unique voter id
func NewID() string {
	return uuid.NewString()
}

// Cookie builds the long-lived cookie that carries id
func Cookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(CookieMaxAge / time.Second),
		Expires:  time.Now().Add(CookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Issue sets the identity cookie on the response when the voter is new
func Issue(w http.ResponseWriter, v Voter) {
	if v.New {
		http.SetCookie(w, Cookie(v.ID))
	}
}

// WithVoter attaches v to ctx
func WithVoter(ctx context.Context, v Voter) context.Context {
	return context.WithValue(ctx, voterContextKey{}, v)
}

// FromContext returns the voter attached by WithVoter
func FromContext(ctx context.Context) (Voter, bool) {
	v, ok := ctx.Value(voterContextKey{}).(Voter)
	return v, ok
}

// ClientIP extracts the client IP address
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr
func ClientIP(r *http.Request) string {
	// Take first IP in chain
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
