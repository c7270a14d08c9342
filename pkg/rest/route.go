// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"net/http"
	"net/url"
	"strings"
)

// Params fills the {name} placeholders of a route template.
type Params map[string]string

// Route is a single API endpoint. Path keeps the template form so requests to
// the same endpoint share a rate limit bucket; channel_id and guild_id are
// lifted out as top-level identifiers because Discord scopes buckets by them.
type Route struct {
	Method    string
	Path      string
	ChannelID string
	GuildID   string

	resolved string
}

// NewRoute builds a route from a template such as
// "/channels/{channel_id}/messages". Values are path-escaped. A placeholder
// without a value is left as-is.
func NewRoute(method, template string, params Params) Route {
	r := Route{
		Method:    strings.ToUpper(method),
		Path:      template,
		ChannelID: params["channel_id"],
		GuildID:   params["guild_id"],
	}

	var b strings.Builder
	remaining := template
	for {
		open := strings.IndexByte(remaining, '{')
		if open < 0 {
			b.WriteString(remaining)
			break
		}
		end := strings.IndexByte(remaining[open:], '}')
		if end < 0 {
			b.WriteString(remaining)
			break
		}
		end += open
		b.WriteString(remaining[:open])
		name := remaining[open+1 : end]
		if v, ok := params[name]; ok {
			b.WriteString(url.PathEscape(v))
		} else {
			b.WriteString(remaining[open : end+1])
		}
		remaining = remaining[end+1:]
	}
	r.resolved = b.String()
	return r
}

// Bucket returns the rate limit key of the route. When Discord reported a
// shared bucket hash for the endpoint it replaces the path.
func (r Route) Bucket(shared string) string {
	if shared != "" {
		return r.ChannelID + ":" + r.GuildID + ":" + shared
	}
	return r.ChannelID + ":" + r.GuildID + ":" + r.Path
}

// URL joins the resolved path onto base.
func (r Route) URL(base string) string {
	return strings.TrimRight(base, "/") + r.Resolved()
}

// Resolved returns the path with placeholders substituted.
func (r Route) Resolved() string {
	if r.resolved == "" {
		return r.Path
	}
	return r.resolved
}

// String renders "METHOD /resolved/path".
func (r Route) String() string {
	return r.Method + " " + r.Resolved()
}

// endpoint identifies the route independently of its identifiers; shared
// bucket hashes are recorded against it.
func (r Route) endpoint() string {
	return r.Method + " " + r.Path
}

// bodyless reports whether the payload travels as query parameters.
func (r Route) bodyless() bool {
	return r.Method == http.MethodGet || r.Method == http.MethodDelete || r.Method == http.MethodHead
}
