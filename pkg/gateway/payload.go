// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package gateway

import (
	"encoding/json"

	"github.com/ManuGH/retux/pkg/resources"
)

// Payload is the gateway envelope. S and T are set only for DISPATCH.
type Payload struct {
	Op Opcode          `json:"op"`
	D  json.RawMessage `json:"d"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

type outgoing struct {
	Op Opcode `json:"op"`
	D  any    `json:"d"`
}

// Hello is the d of HELLO.
type Hello struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

// IdentifyProperties describes the connecting client.
type IdentifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// Identify starts a new session.
type Identify struct {
	Token          string             `json:"token"`
	Intents        resources.Intents  `json:"intents"`
	Properties     IdentifyProperties `json:"properties"`
	LargeThreshold int                `json:"large_threshold,omitempty"`
	Shard          *[2]int            `json:"shard,omitempty"`
	Presence       *PresenceUpdate    `json:"presence,omitempty"`
}

// Resume replays missed events of an existing session.
type Resume struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
}

// ActivityType is the verb shown before an activity name.
type ActivityType int

const (
	ActivityPlaying   ActivityType = 0
	ActivityStreaming ActivityType = 1
	ActivityListening ActivityType = 2
	ActivityWatching  ActivityType = 3
	ActivityCustom    ActivityType = 4
	ActivityCompeting ActivityType = 5
)

// Activity is a bot activity.
type Activity struct {
	Name  string       `json:"name"`
	Type  ActivityType `json:"type"`
	URL   string       `json:"url,omitempty"`
	State string       `json:"state,omitempty"`
}

// Presence statuses.
const (
	StatusOnline    = "online"
	StatusDND       = "dnd"
	StatusIdle      = "idle"
	StatusInvisible = "invisible"
	StatusOffline   = "offline"
)

// PresenceUpdate sets the bot's status and activities.
type PresenceUpdate struct {
	// Since is the unix time in milliseconds the client went idle.
	Since      *int64     `json:"since"`
	Activities []Activity `json:"activities"`
	Status     string     `json:"status"`
	AFK        bool       `json:"afk"`
}

// VoiceStateUpdate joins, moves or leaves a voice channel. A nil ChannelID
// disconnects.
type VoiceStateUpdate struct {
	GuildID   resources.Snowflake  `json:"guild_id"`
	ChannelID *resources.Snowflake `json:"channel_id"`
	SelfMute  bool                 `json:"self_mute"`
	SelfDeaf  bool                 `json:"self_deaf"`
}

// RequestGuildMembers asks for GUILD_MEMBERS_CHUNK events. Either Query or
// UserIDs must be set.
type RequestGuildMembers struct {
	GuildID   resources.Snowflake   `json:"guild_id"`
	Query     *string               `json:"query,omitempty"`
	Limit     int                   `json:"limit"`
	Presences bool                  `json:"presences,omitempty"`
	UserIDs   []resources.Snowflake `json:"user_ids,omitempty"`
	Nonce     string                `json:"nonce,omitempty"`
}
