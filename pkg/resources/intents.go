// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resources

import (
	"fmt"
	"strconv"
	"strings"
)

// Intents select which gateway events a connection receives.
type Intents uint32

const (
	IntentGuilds                      Intents = 1 << 0
	IntentGuildMembers                Intents = 1 << 1 // privileged
	IntentGuildModeration             Intents = 1 << 2
	IntentGuildEmojisAndStickers      Intents = 1 << 3
	IntentGuildIntegrations           Intents = 1 << 4
	IntentGuildWebhooks               Intents = 1 << 5
	IntentGuildInvites                Intents = 1 << 6
	IntentGuildVoiceStates            Intents = 1 << 7
	IntentGuildPresences              Intents = 1 << 8 // privileged
	IntentGuildMessages               Intents = 1 << 9
	IntentGuildMessageReactions       Intents = 1 << 10
	IntentGuildMessageTyping          Intents = 1 << 11
	IntentDirectMessages              Intents = 1 << 12
	IntentDirectMessageReactions      Intents = 1 << 13
	IntentDirectMessageTyping         Intents = 1 << 14
	IntentMessageContent              Intents = 1 << 15 // privileged
	IntentGuildScheduledEvents        Intents = 1 << 16
	IntentAutoModerationConfiguration Intents = 1 << 20
	IntentAutoModerationExecution     Intents = 1 << 21
)

// IntentsPrivileged must be enabled in the developer portal before use.
const IntentsPrivileged = IntentGuildMembers | IntentGuildPresences | IntentMessageContent

type namedIntent struct {
	name   string
	intent Intents
}

// ordered by bit
var intentNames = []namedIntent{
	{"GUILDS", IntentGuilds},
	{"GUILD_MEMBERS", IntentGuildMembers},
	{"GUILD_MODERATION", IntentGuildModeration},
	{"GUILD_EMOJIS_AND_STICKERS", IntentGuildEmojisAndStickers},
	{"GUILD_INTEGRATIONS", IntentGuildIntegrations},
	{"GUILD_WEBHOOKS", IntentGuildWebhooks},
	{"GUILD_INVITES", IntentGuildInvites},
	{"GUILD_VOICE_STATES", IntentGuildVoiceStates},
	{"GUILD_PRESENCES", IntentGuildPresences},
	{"GUILD_MESSAGES", IntentGuildMessages},
	{"GUILD_MESSAGE_REACTIONS", IntentGuildMessageReactions},
	{"GUILD_MESSAGE_TYPING", IntentGuildMessageTyping},
	{"DIRECT_MESSAGES", IntentDirectMessages},
	{"DIRECT_MESSAGE_REACTIONS", IntentDirectMessageReactions},
	{"DIRECT_MESSAGE_TYPING", IntentDirectMessageTyping},
	{"MESSAGE_CONTENT", IntentMessageContent},
	{"GUILD_SCHEDULED_EVENTS", IntentGuildScheduledEvents},
	{"AUTO_MODERATION_CONFIGURATION", IntentAutoModerationConfiguration},
	{"AUTO_MODERATION_EXECUTION", IntentAutoModerationExecution},
}

// IntentsAll is every known intent, privileged ones included.
var IntentsAll = func() Intents {
	var all Intents
	for _, n := range intentNames {
		all |= n.intent
	}
	return all
}()

// IntentsDefault is every non-privileged intent.
var IntentsDefault = IntentsAll &^ IntentsPrivileged

// Has reports whether every bit of intent is set.
func (i Intents) Has(intent Intents) bool { return i&intent == intent }

// Privileged returns the privileged subset of i.
func (i Intents) Privileged() Intents { return i & IntentsPrivileged }

// String joins the names of the set intents with "|". Unknown bits are
// rendered numerically.
func (i Intents) String() string {
	if i == 0 {
		return "NONE"
	}
	var parts []string
	rest := i
	for _, n := range intentNames {
		if i.Has(n.intent) {
			parts = append(parts, n.name)
			rest &^= n.intent
		}
	}
	if rest != 0 {
		parts = append(parts, strconv.FormatUint(uint64(rest), 10))
	}
	return strings.Join(parts, "|")
}

// ParseIntents accepts a decimal bit set ("513"), or intent names separated
// by commas or pipes ("GUILDS,GUILD_MESSAGES"). ALL, DEFAULT and NONE are
// recognised as shorthands. Names are case-insensitive and may omit the
// INTENT_ prefix.
func ParseIntents(s string) (Intents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		return Intents(v), nil
	}
	var out Intents
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' })
	for _, f := range fields {
		name := strings.ToUpper(strings.TrimSpace(f))
		name = strings.TrimPrefix(name, "INTENT_")
		if name == "" {
			continue
		}
		switch name {
		case "ALL":
			out |= IntentsAll
			continue
		case "DEFAULT":
			out |= IntentsDefault
			continue
		case "NONE":
			continue
		}
		found := false
		for _, n := range intentNames {
			if n.name == name {
				out |= n.intent
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown intent %q", f)
		}
	}
	return out, nil
}
