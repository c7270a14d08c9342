// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package events

import (
	"time"

	"github.com/ManuGH/retux/pkg/resources"
)

// TypingStart is sent when a user starts typing in a channel. GuildID is zero
// in DMs.
type TypingStart struct {
	ChannelID resources.Snowflake `json:"channel_id"`
	UserID    resources.Snowflake `json:"user_id"`
	// Timestamp is in unix seconds.
	Timestamp int64               `json:"timestamp"`
	GuildID   resources.Snowflake `json:"guild_id,omitempty"`
}

func (*TypingStart) EventName() string { return NameTypingStart }

// At converts Timestamp to a time.
func (e *TypingStart) At() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}

// InGuild reports whether the typing happened outside a DM.
func (e *TypingStart) InGuild() bool {
	return !e.GuildID.IsZero()
}
