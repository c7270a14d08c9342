// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrBadRequest   = errors.New("discord: bad request")
	ErrUnauthorized = errors.New("discord: unauthorized")
	ErrForbidden    = errors.New("discord: forbidden")
	ErrNotFound     = errors.New("discord: not found")
	ErrRateLimited  = errors.New("discord: rate limited")
	ErrServer       = errors.New("discord: server error (5xx)")
	ErrUnavailable  = errors.New("discord: host unreachable or transport failure")
	ErrBadResponse  = errors.New("discord: malformed response body")
)

// HTTPError is an error response from Discord. It unwraps to the sentinel
// matching its status.
type HTTPError struct {
	Route   string
	Status  int
	Code    int
	Message string
	// Errors is the raw nested "errors" object Discord attaches to
	// validation failures.
	Errors json.RawMessage

	sentinel error
}

type errorBody struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

func newHTTPError(route Route, status int, body []byte) *HTTPError {
	e := &HTTPError{
		Route:    route.String(),
		Status:   status,
		sentinel: sentinelFor(status),
	}
	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		e.Code = eb.Code
		e.Message = eb.Message
		if len(eb.Errors) > 0 && string(eb.Errors) != "null" {
			e.Errors = eb.Errors
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func sentinelFor(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	default:
		return ErrBadRequest
	}
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("discord: %s: HTTP %d", e.Route, e.Status)
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if fields := e.Fields(); len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+strings.Join(fields[k], "; "))
		}
		msg = fmt.Sprintf("%s [%s]", msg, strings.Join(parts, ", "))
	}
	return msg
}

func (e *HTTPError) Unwrap() error {
	return e.sentinel
}

// Fields flattens the nested errors object into dotted paths, e.g.
// "embeds.0.title" -> ["Must be 256 or fewer in length."].
func (e *HTTPError) Fields() map[string][]string {
	if len(e.Errors) == 0 {
		return nil
	}
	var tree map[string]any
	if err := json.Unmarshal(e.Errors, &tree); err != nil {
		return nil
	}
	out := make(map[string][]string)
	flattenErrors("", tree, out)
	return out
}

func flattenErrors(prefix string, node map[string]any, out map[string][]string) {
	for key, value := range node {
		if key == "_errors" {
			list, _ := value.([]any)
			for _, item := range list {
				entry, _ := item.(map[string]any)
				if msg, ok := entry["message"].(string); ok {
					name := prefix
					if name == "" {
						name = "_"
					}
					out[name] = append(out[name], msg)
				}
			}
			continue
		}
		child, ok := value.(map[string]any)
		if !ok {
			continue
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		flattenErrors(path, child, out)
	}
}
