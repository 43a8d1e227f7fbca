// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestResolve_MintsNewID(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/votes", nil)

	v := Resolve(req)
	if !v.New {
		t.Error("Expected a new voter")
	}
	if _, err := uuid.Parse(v.ID); err != nil {
		t.Errorf("Resolve() id %q is not a UUID: %v", v.ID, err)
	}

	// Two requests without cookies get different ids
	if other := Resolve(httptest.NewRequest("GET", "/", nil)); other.ID == v.ID {
		t.Error("Resolve() produced duplicate IDs (extremely unlikely)")
	}
}

func TestResolve_ReusesCookie(t *testing.T) {
	id := NewID()
	req := httptest.NewRequest("GET", "/api/votes", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: id})

	v := Resolve(req)
	if v.New {
		t.Error("Expected existing voter to be reused")
	}
	if v.ID != id {
		t.Errorf("Resolve() id = %q, want %q", v.ID, id)
	}
}

func TestResolve_ReplacesMalformedCookie(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/votes", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-uuid"})

	v := Resolve(req)
	if !v.New || v.ID == "not-a-uuid" {
		t.Errorf("Expected malformed cookie to be replaced, got %+v", v)
	}
}

func TestIssue(t *testing.T) {
	w := httptest.NewRecorder()
	Issue(w, Voter{ID: "abc", New: true})

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("Expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != "abc" {
		t.Errorf("Unexpected cookie %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly {
		t.Error("Expected HttpOnly cookie")
	}
	if c.MaxAge != 365*24*60*60 {
		t.Errorf("Expected one year max age, got %d", c.MaxAge)
	}

	// Existing voters get no cookie
	w = httptest.NewRecorder()
	Issue(w, Voter{ID: "abc"})
	if len(w.Result().Cookies()) != 0 {
		t.Error("Expected no cookie for existing voter")
	}
}

func TestContextRoundTrip(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("Expected no voter in empty context")
	}

	ctx := WithVoter(context.Background(), Voter{ID: "v1", Addr: "10.0.0.1"})
	v, ok := FromContext(ctx)
	if !ok || v.ID != "v1" || v.Addr != "10.0.0.1" {
		t.Errorf("FromContext() = %+v, %v", v, ok)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr with port", "192.168.1.10:54321", nil, "192.168.1.10"},
		{"ipv6 remote addr", "[::1]:8080", nil, "::1"},
		{"remote addr without port", "192.168.1.10", nil, "192.168.1.10"},
		{"x-forwarded-for chain", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.5, 70.41.3.18"}, "203.0.113.5"},
		{"x-forwarded-for single", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "203.0.113.5"},
		{"x-real-ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"xff wins over real ip", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.5", "X-Real-IP": "198.51.100.7"}, "203.0.113.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name    string
		ua      string
		browser string
		os      string
		device  string
	}{
		{
			"chrome on windows",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
			"Chrome", "Windows", "Desktop",
		},
		{
			"safari on iphone",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_3 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Mobile/15E148 Safari/604.1",
			"Safari", "iOS", "Mobile",
		},
		{
			"firefox on linux",
			"Mozilla/5.0 (X11; Linux x86_64; rv:123.0) Gecko/20100101 Firefox/123.0",
			"Firefox", "Linux", "Desktop",
		},
		{
			"chrome on android phone",
			"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Mobile Safari/537.36",
			"Chrome", "Android", "Mobile",
		},
		{
			"ipad",
			"Mozilla/5.0 (iPad; CPU OS 17_3 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Mobile/15E148 Safari/604.1",
			"Safari", "iOS", "Tablet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := ParseUserAgent(tt.ua)
			if meta.Browser != tt.browser {
				t.Errorf("Browser = %q, want %q", meta.Browser, tt.browser)
			}
			if meta.OS != tt.os {
				t.Errorf("OS = %q, want %q", meta.OS, tt.os)
			}
			if meta.Device != tt.device {
				t.Errorf("Device = %q, want %q", meta.Device, tt.device)
			}
			if meta.UA != tt.ua {
				t.Error("Expected raw user agent to be kept")
			}
		})
	}

	crawler := ParseUserAgent("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	if crawler.Device != "Bot" {
		t.Errorf("Device = %q for crawler, want Bot", crawler.Device)
	}

	if meta := ParseUserAgent(""); meta.Browser != "" || meta.Device != "" {
		t.Errorf("Expected empty metadata for empty UA, got %+v", meta)
	}
}
