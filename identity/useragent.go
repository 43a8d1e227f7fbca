// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"strings"

	"github.com/mssola/useragent"

	"github.com/danielhkuo/daily-pick/models"
)

// ParseUserAgent classifies a user agent string. The result is
// informational and never used for vote counting.
func ParseUserAgent(ua string) models.ClientMeta {
	meta := models.ClientMeta{UA: ua}
	if strings.TrimSpace(ua) == "" {
		return meta
	}

	parsed := useragent.New(ua)

	meta.Browser, _ = parsed.Browser()
	if meta.Browser == "" {
		meta.Browser = "Unknown"
	}
	meta.OS = osFamily(parsed)
	meta.Device = deviceType(parsed, ua)
	return meta
}

// osFamily collapses the parser's platform and OS strings ("Windows 10",
// "CPU iPhone OS 17_3 like Mac OS X", "Android 14") into a family name
func osFamily(ua *useragent.UserAgent) string {
	platform := ua.Platform()
	os := ua.OS()
	switch {
	case platform == "iPhone" || platform == "iPad" || platform == "iPod":
		return "iOS"
	case strings.Contains(os, "Android"):
		return "Android"
	case strings.Contains(platform, "Windows") || strings.Contains(os, "Windows"):
		return "Windows"
	case strings.Contains(os, "CrOS"):
		return "ChromeOS"
	case platform == "Macintosh" || strings.Contains(os, "Mac OS X"):
		return "macOS"
	case strings.Contains(os, "Linux") || platform == "Linux" || platform == "X11":
		return "Linux"
	}
	if name := ua.OSInfo().Name; name != "" {
		return name
	}
	return "Unknown"
}

func deviceType(ua *useragent.UserAgent, raw string) string {
	switch {
	case ua.Bot():
		return "Bot"
	case ua.Platform() == "iPad" || strings.Contains(raw, "Tablet") ||
		(strings.Contains(raw, "Android") && !strings.Contains(raw, "Mobile")):
		return "Tablet"
	case ua.Mobile():
		return "Mobile"
	default:
		return "Desktop"
	}
}
