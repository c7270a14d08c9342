// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/retux/pkg/resources"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"on_message_create": "MESSAGE_CREATE",
		"message_create":    "MESSAGE_CREATE",
		"MESSAGE_CREATE":    "MESSAGE_CREATE",
		"MessageCreate":     "MESSAGE_CREATE",
		"GuildRoleDelete":   "GUILD_ROLE_DELETE",
		"on_ready":          "READY",
		"READY":             "READY",
		" typing-start ":    "TYPING_START",
		"ON_GUILD_CREATE":   "GUILD_CREATE",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestKnownNamesRoundTrip(t *testing.T) {
	for _, name := range Known() {
		ev, err := Decode(name, nil)
		require.NoError(t, err, name)
		assert.Equal(t, name, ev.EventName(), "constructor for %s builds the wrong type", name)
		assert.True(t, IsKnown(name))
	}
	assert.False(t, IsKnown("PRESENCE_UPDATE"))
}

func TestDecode_UnknownIsRaw(t *testing.T) {
	data := json.RawMessage(`{"user":{"id":"1"}}`)
	ev, err := Decode("presence_update", data)
	require.NoError(t, err)

	raw, ok := ev.(*Raw)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, "PRESENCE_UPDATE", raw.EventName())
	assert.JSONEq(t, string(data), string(raw.Data))
}

func TestDecode_Ready(t *testing.T) {
	data := `{
		"v": 10,
		"user": {"id": "42", "username": "retux", "discriminator": "0", "bot": true},
		"guilds": [{"id": "1", "unavailable": true}, {"id": "2"}],
		"session_id": "abc",
		"resume_gateway_url": "wss://gateway-us-east1-b.discord.gg",
		"shard": [0, 2],
		"application": {"id": "42", "flags": 0}
	}`
	ev, err := Decode("READY", json.RawMessage(data))
	require.NoError(t, err)

	ready := ev.(*Ready)
	assert.Equal(t, 10, ready.Version())
	assert.Equal(t, "abc", ready.SessionID)
	assert.Equal(t, "wss://gateway-us-east1-b.discord.gg", ready.ResumeGatewayURL)
	assert.Equal(t, []int{0, 2}, ready.Shard)
	assert.Equal(t, resources.Snowflake(42), ready.User.ID)
	assert.Equal(t, resources.Snowflake(42), ready.Application.ID)
	require.Len(t, ready.Guilds, 2)
	assert.True(t, ready.Guilds[1].Unavailable, "unavailable defaults to true")
}

func TestDecode_InvalidSession(t *testing.T) {
	ev, err := Decode("INVALID_SESSION", json.RawMessage(`true`))
	require.NoError(t, err)
	assert.True(t, ev.(*InvalidSession).CanReconnect())

	ev, err = Decode("INVALID_SESSION", json.RawMessage(`false`))
	require.NoError(t, err)
	assert.False(t, ev.(*InvalidSession).CanReconnect())

	ev, err = Decode("INVALID_SESSION", nil)
	require.NoError(t, err)
	assert.False(t, ev.(*InvalidSession).CanReconnect(), "missing flag means not resumable")
}

func TestDecode_TypingStart(t *testing.T) {
	ev, err := Decode("on_typing_start", json.RawMessage(`{"channel_id":"5","user_id":"6","timestamp":1700000000}`))
	require.NoError(t, err)

	ts := ev.(*TypingStart)
	assert.Equal(t, resources.Snowflake(5), ts.ChannelID)
	assert.Equal(t, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC), ts.At())
	assert.False(t, ts.InGuild())
}

func TestDecode_GuildCreateKeepsExtraFields(t *testing.T) {
	data := `{
		"id": "197038439483310086",
		"name": "Discord Testers",
		"owner_id": "73193882359173120",
		"roles": [{"id": "197038439483310086", "name": "@everyone", "color": 0}],
		"joined_at": "2024-05-01T10:00:00+00:00",
		"large": true,
		"member_count": 250001,
		"channels": [{"id": "3", "type": 0, "name": "general"}]
	}`
	ev, err := Decode(NameGuildCreate, json.RawMessage(data))
	require.NoError(t, err)

	gc := ev.(*GuildCreate)
	assert.Equal(t, "Discord Testers", gc.Name)
	assert.Equal(t, 25, gc.MaxVideoChannelUsers, "guild defaults still apply")
	assert.True(t, gc.Large)
	assert.Equal(t, 250001, gc.MemberCount)
	assert.Equal(t, 2024, gc.JoinedAt.Year())
	require.Len(t, gc.Channels, 1)
	require.NotNil(t, gc.Channels[0].Name)
	assert.Equal(t, "general", *gc.Channels[0].Name)
	require.Len(t, gc.Roles, 1)
}

func TestDecode_GuildDelete(t *testing.T) {
	ev, err := Decode(NameGuildDelete, json.RawMessage(`{"id":"9"}`))
	require.NoError(t, err)
	assert.True(t, ev.(*GuildDelete).Removed())

	ev, err = Decode(NameGuildDelete, json.RawMessage(`{"id":"9","unavailable":true}`))
	require.NoError(t, err)
	assert.False(t, ev.(*GuildDelete).Removed())
}

func TestDecode_RoleAndMessageEvents(t *testing.T) {
	ev, err := Decode(NameGuildRoleDelete, json.RawMessage(`{"guild_id":"1","role_id":"2"}`))
	require.NoError(t, err)
	assert.Equal(t, resources.Snowflake(2), ev.(*GuildRoleDelete).RoleID)

	ev, err = Decode(NameMessageCreate, json.RawMessage(`{"id":"10","channel_id":"11","content":"hello","type":0,"timestamp":"2024-05-01T10:00:00+00:00","author":{"id":"12","username":"u"}}`))
	require.NoError(t, err)
	mc := ev.(*MessageCreate)
	assert.Equal(t, "hello", mc.Content)
	assert.Equal(t, resources.Snowflake(11), mc.ChannelID)
}

func TestDecode_MalformedPayload(t *testing.T) {
	_, err := Decode(NameTypingStart, json.RawMessage(`{"channel_id":[1]}`))
	assert.ErrorContains(t, err, "decode TYPING_START")
}
