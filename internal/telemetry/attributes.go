// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by REST and gateway spans.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	DiscordBucketKey    = "discord.bucket"
	DiscordAttemptKey   = "discord.attempt"
	DiscordRequestIDKey = "discord.request_id"
	DiscordGuildIDKey   = "discord.guild_id"
	DiscordChannelIDKey = "discord.channel_id"

	GatewayOpcodeKey = "gateway.op"
	GatewayEventKey  = "gateway.event"
	GatewayShardKey  = "gateway.shard"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates the common request attributes. Zero status codes are
// omitted.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int(HTTPStatusCodeKey, statusCode))
	}
	return attrs
}

// RouteAttributes describes the Discord identifiers a REST route touches.
func RouteAttributes(bucket, guildID, channelID string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	attrs = append(attrs, attribute.String(DiscordBucketKey, bucket))
	if guildID != "" {
		attrs = append(attrs, attribute.String(DiscordGuildIDKey, guildID))
	}
	if channelID != "" {
		attrs = append(attrs, attribute.String(DiscordChannelIDKey, channelID))
	}
	return attrs
}

// DispatchAttributes describes a gateway DISPATCH.
func DispatchAttributes(event string, shard int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(GatewayEventKey, event),
		attribute.Int(GatewayShardKey, shard),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
