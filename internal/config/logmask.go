// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"net/url"
	"strings"
)

// MaskToken keeps the first four characters of a bot token. Tokens start
// with the base64 bot id, so the prefix identifies the bot without being
// usable.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "***"
}

// MaskURL drops userinfo and query from a URL.
func MaskURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "***redacted***"
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}

// Redacted returns a copy of cfg that is safe to log or print.
func (c AppConfig) Redacted() AppConfig {
	out := c
	out.Token = MaskToken(c.Token)
	if c.Session.RedisPassword != "" {
		out.Session.RedisPassword = "***"
	}
	out.Tracing.Endpoint = MaskURL(c.Tracing.Endpoint)
	if strings.Contains(c.Session.RedisAddr, "@") {
		out.Session.RedisAddr = MaskURL(c.Session.RedisAddr)
	}
	return out
}
