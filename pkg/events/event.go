// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package events models the DISPATCH payloads Discord sends over the gateway.
package events

import (
	"encoding/json"
)

// Event is any gateway event. EventName returns the canonical upper snake
// name, e.g. "MESSAGE_CREATE".
type Event interface {
	EventName() string
}

// Event names.
const (
	NameReady           = "READY"
	NameResumed         = "RESUMED"
	NameReconnect       = "RECONNECT"
	NameInvalidSession  = "INVALID_SESSION"
	NameTypingStart     = "TYPING_START"
	NameGuildCreate     = "GUILD_CREATE"
	NameGuildUpdate     = "GUILD_UPDATE"
	NameGuildDelete     = "GUILD_DELETE"
	NameGuildRoleCreate = "GUILD_ROLE_CREATE"
	NameGuildRoleUpdate = "GUILD_ROLE_UPDATE"
	NameGuildRoleDelete = "GUILD_ROLE_DELETE"
	NameChannelCreate   = "CHANNEL_CREATE"
	NameChannelUpdate   = "CHANNEL_UPDATE"
	NameChannelDelete   = "CHANNEL_DELETE"
	NameMessageCreate   = "MESSAGE_CREATE"
)

// Raw carries an event retux has no model for.
type Raw struct {
	Name string
	Data json.RawMessage
}

func (e *Raw) EventName() string { return e.Name }
