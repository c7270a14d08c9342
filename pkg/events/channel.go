// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package events

import "github.com/ManuGH/retux/pkg/resources"

type ChannelCreate struct {
	resources.Channel
}

func (*ChannelCreate) EventName() string { return NameChannelCreate }

type ChannelUpdate struct {
	resources.Channel
}

func (*ChannelUpdate) EventName() string { return NameChannelUpdate }

type ChannelDelete struct {
	resources.Channel
}

func (*ChannelDelete) EventName() string { return NameChannelDelete }

// MessageCreate is sent for every message the bot can see. Content is empty
// without the MESSAGE_CONTENT intent, except in DMs and mentions.
type MessageCreate struct {
	resources.Message
}

func (*MessageCreate) EventName() string { return NameMessageCreate }
