// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resources

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// MessageType is the kind of a message.
type MessageType int

const (
	MessageTypeDefault                                 MessageType = 0
	MessageTypeRecipientAdd                            MessageType = 1
	MessageTypeRecipientRemove                         MessageType = 2
	MessageTypeCall                                    MessageType = 3
	MessageTypeChannelNameChange                       MessageType = 4
	MessageTypeChannelIconChange                       MessageType = 5
	MessageTypeChannelPinnedMessage                    MessageType = 6
	MessageTypeUserJoin                                MessageType = 7
	MessageTypeGuildBoost                              MessageType = 8
	MessageTypeGuildBoostTier1                         MessageType = 9
	MessageTypeGuildBoostTier2                         MessageType = 10
	MessageTypeGuildBoostTier3                         MessageType = 11
	MessageTypeChannelFollowAdd                        MessageType = 12
	MessageTypeGuildDiscoveryDisqualified              MessageType = 14
	MessageTypeGuildDiscoveryRequalified               MessageType = 15
	MessageTypeGuildDiscoveryGracePeriodInitialWarning MessageType = 16
	MessageTypeGuildDiscoveryGracePeriodFinalWarning   MessageType = 17
	MessageTypeThreadCreated                           MessageType = 18
	MessageTypeReply                                   MessageType = 19
	MessageTypeChatInputCommand                        MessageType = 20
	MessageTypeThreadStarterMessage                    MessageType = 21
	MessageTypeGuildInviteReminder                     MessageType = 22
	MessageTypeContextMenuCommand                      MessageType = 23
	MessageTypeAutoModerationAction                    MessageType = 24
)

// MessageActivityType is the rich presence activity attached to a message.
type MessageActivityType int

const (
	MessageActivityJoin        MessageActivityType = 1
	MessageActivitySpectate    MessageActivityType = 2
	MessageActivityListen      MessageActivityType = 3
	MessageActivityJoinRequest MessageActivityType = 5
)

// MessageFlags are message bit flags.
type MessageFlags int

const (
	MessageFlagCrossposted                      MessageFlags = 1 << 0
	MessageFlagIsCrosspost                      MessageFlags = 1 << 1
	MessageFlagSuppressEmbeds                   MessageFlags = 1 << 2
	MessageFlagSourceMessageDeleted             MessageFlags = 1 << 3
	MessageFlagUrgent                           MessageFlags = 1 << 4
	MessageFlagHasThread                        MessageFlags = 1 << 5
	MessageFlagEphemeral                        MessageFlags = 1 << 6
	MessageFlagLoading                          MessageFlags = 1 << 7
	MessageFlagFailedToMentionSomeRolesInThread MessageFlags = 1 << 8
)

// Has reports whether every bit of flag is set.
func (f MessageFlags) Has(flag MessageFlags) bool { return f&flag == flag }

// MessageActivity is sent with rich presence related chat embeds.
type MessageActivity struct {
	Type    MessageActivityType `json:"type"`
	PartyID string              `json:"party_id,omitempty"`
}

// Message is a message sent in a channel.
type Message struct {
	ID              Snowflake        `json:"id"`
	ChannelID       Snowflake        `json:"channel_id"`
	GuildID         Snowflake        `json:"guild_id,omitempty"`
	Author          User             `json:"author"`
	Content         string           `json:"content"`
	Timestamp       time.Time        `json:"timestamp"`
	EditedTimestamp *time.Time       `json:"edited_timestamp,omitempty"`
	TTS             bool             `json:"tts"`
	MentionEveryone bool             `json:"mention_everyone"`
	Mentions        []User           `json:"mentions,omitempty"`
	Pinned          bool             `json:"pinned"`
	Type            MessageType      `json:"type"`
	Flags           MessageFlags     `json:"flags,omitempty"`
	Activity        *MessageActivity `json:"activity,omitempty"`
}

// MaxMessageLength bounds the content of a message sent by a bot.
const MaxMessageLength = 2000

// MessageCreate is the body for sending a message.
type MessageCreate struct {
	Content string       `json:"content,omitempty"`
	TTS     bool         `json:"tts,omitempty"`
	Flags   MessageFlags `json:"flags,omitempty"`
	// Nonce lets the client verify the message was sent.
	Nonce string `json:"nonce,omitempty"`
}

// ErrMessageTooLong is returned for content beyond MaxMessageLength runes.
var ErrMessageTooLong = errors.New("message content exceeds 2000 characters")

// ErrEmptyMessage is returned when a message has nothing to send.
var ErrEmptyMessage = errors.New("message content is empty")

// Validate checks the body before it is sent.
func (m MessageCreate) Validate() error {
	n := utf8.RuneCountInString(m.Content)
	if n == 0 {
		return ErrEmptyMessage
	}
	if n > MaxMessageLength {
		return fmt.Errorf("%w: got %d", ErrMessageTooLong, n)
	}
	return nil
}
