// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package events

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// lookup maps event names to constructors of their zero value.
var lookup = map[string]func() Event{
	NameReady:           func() Event { return new(Ready) },
	NameResumed:         func() Event { return new(Resumed) },
	NameReconnect:       func() Event { return new(Reconnect) },
	NameInvalidSession:  func() Event { return new(InvalidSession) },
	NameTypingStart:     func() Event { return new(TypingStart) },
	NameGuildCreate:     func() Event { return new(GuildCreate) },
	NameGuildUpdate:     func() Event { return new(GuildUpdate) },
	NameGuildDelete:     func() Event { return new(GuildDelete) },
	NameGuildRoleCreate: func() Event { return new(GuildRoleCreate) },
	NameGuildRoleUpdate: func() Event { return new(GuildRoleUpdate) },
	NameGuildRoleDelete: func() Event { return new(GuildRoleDelete) },
	NameChannelCreate:   func() Event { return new(ChannelCreate) },
	NameChannelUpdate:   func() Event { return new(ChannelUpdate) },
	NameChannelDelete:   func() Event { return new(ChannelDelete) },
	NameMessageCreate:   func() Event { return new(MessageCreate) },
}

// Known lists the modelled event names in sorted order.
func Known() []string {
	names := make([]string, 0, len(lookup))
	for name := range lookup {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKnown reports whether name, after normalisation, has a model.
func IsKnown(name string) bool {
	_, ok := lookup[Normalize(name)]
	return ok
}

// Decode builds the typed event for name from its d payload. Unknown names
// decode to *Raw. Empty or null data yields the zero value of the model.
func Decode(name string, data json.RawMessage) (Event, error) {
	name = Normalize(name)
	ctor, ok := lookup[name]
	if !ok {
		return &Raw{Name: name, Data: data}, nil
	}
	ev := ctor()
	if len(data) == 0 || string(data) == "null" {
		return ev, nil
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return ev, nil
}

// Normalize maps the spellings users write for an event to its canonical
// name: "on_message_create", "message_create", "MessageCreate" and
// "MESSAGE_CREATE" all become "MESSAGE_CREATE".
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > 3 && strings.EqualFold(name[:3], "on_") {
		name = name[3:]
	}

	var b strings.Builder
	b.Grow(len(name) + 4)
	var prev rune
	for i, r := range name {
		switch {
		case r == '-' || r == ' ' || r == '.':
			r = '_'
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
		prev = r
	}
	return b.String()
}
