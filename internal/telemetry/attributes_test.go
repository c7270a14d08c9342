// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestHTTPAttributes_OmitsZeroStatus(t *testing.T) {
	attrs := HTTPAttributes("GET", "/users/@me", 0)
	assert.Len(t, attrs, 2)

	attrs = HTTPAttributes("GET", "/users/@me", 200)
	assert.Contains(t, attrs, attribute.Int(HTTPStatusCodeKey, 200))
}

func TestRouteAttributes(t *testing.T) {
	attrs := RouteAttributes("1:0:/channels/{channel_id}", "", "1")
	assert.Equal(t, []attribute.KeyValue{
		attribute.String(DiscordBucketKey, "1:0:/channels/{channel_id}"),
		attribute.String(DiscordChannelIDKey, "1"),
	}, attrs)
}
