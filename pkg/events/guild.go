// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package events

import (
	"encoding/json"
	"time"

	"github.com/ManuGH/retux/pkg/resources"
)

// GuildCreate is sent when a guild becomes available, on join and after
// READY for every guild listed as unavailable.
type GuildCreate struct {
	resources.Guild

	JoinedAt    time.Time           `json:"joined_at"`
	Large       bool                `json:"large"`
	Unavailable bool                `json:"unavailable"`
	MemberCount int                 `json:"member_count"`
	Channels    []resources.Channel `json:"channels"`
	Threads     []resources.Channel `json:"threads"`
}

func (*GuildCreate) EventName() string { return NameGuildCreate }

// UnmarshalJSON decodes the guild and the create-only fields. It is required
// because resources.Guild has its own decoder, which would otherwise be
// promoted and swallow the extra fields.
func (e *GuildCreate) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &e.Guild); err != nil {
		return err
	}
	var extra struct {
		JoinedAt    time.Time           `json:"joined_at"`
		Large       bool                `json:"large"`
		Unavailable bool                `json:"unavailable"`
		MemberCount int                 `json:"member_count"`
		Channels    []resources.Channel `json:"channels"`
		Threads     []resources.Channel `json:"threads"`
	}
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	e.JoinedAt = extra.JoinedAt
	e.Large = extra.Large
	e.Unavailable = extra.Unavailable
	e.MemberCount = extra.MemberCount
	e.Channels = extra.Channels
	e.Threads = extra.Threads
	return nil
}

// GuildUpdate carries the updated guild.
type GuildUpdate struct {
	resources.Guild
}

func (*GuildUpdate) EventName() string { return NameGuildUpdate }

// GuildDelete is sent when the bot leaves a guild or it becomes unavailable.
// Unavailable is false only when the bot was removed.
type GuildDelete struct {
	resources.UnavailableGuild
}

func (*GuildDelete) EventName() string { return NameGuildDelete }

// Removed reports whether the bot was kicked or left, rather than the guild
// going down.
func (e *GuildDelete) Removed() bool { return !e.Unavailable }

// UnmarshalJSON keeps the payload's unavailable flag; an absent flag means
// the bot was removed.
func (e *GuildDelete) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          resources.Snowflake `json:"id"`
		Unavailable bool                `json:"unavailable"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.ID = raw.ID
	e.Unavailable = raw.Unavailable
	return nil
}

// GuildRoleCreate is sent when a role is created.
type GuildRoleCreate struct {
	GuildID resources.Snowflake `json:"guild_id"`
	Role    resources.Role      `json:"role"`
}

func (*GuildRoleCreate) EventName() string { return NameGuildRoleCreate }

// GuildRoleUpdate is sent when a role changes.
type GuildRoleUpdate struct {
	GuildID resources.Snowflake `json:"guild_id"`
	Role    resources.Role      `json:"role"`
}

func (*GuildRoleUpdate) EventName() string { return NameGuildRoleUpdate }

// GuildRoleDelete is sent when a role is deleted.
type GuildRoleDelete struct {
	GuildID resources.Snowflake `json:"guild_id"`
	RoleID  resources.Snowflake `json:"role_id"`
}

func (*GuildRoleDelete) EventName() string { return NameGuildRoleDelete }
