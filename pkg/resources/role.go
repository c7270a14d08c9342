// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resources

import (
	"encoding/json"
)

// RoleTags describe what a managed role belongs to.
type RoleTags struct {
	BotID         Snowflake `json:"bot_id,omitempty"`
	IntegrationID Snowflake `json:"integration_id,omitempty"`
	// PremiumSubscriber marks the guild's booster role. Discord encodes it as
	// a key whose value is null, so presence of the key means true.
	PremiumSubscriber bool `json:"-"`
}

// UnmarshalJSON decodes the presence-encoded premium_subscriber key.
func (t *RoleTags) UnmarshalJSON(data []byte) error {
	type alias RoleTags
	var v alias
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if raw, ok := keys["premium_subscriber"]; ok {
		// Older payloads sent a boolean instead of null.
		v.PremiumSubscriber = string(raw) != "false"
	}
	*t = RoleTags(v)
	return nil
}

// MarshalJSON mirrors UnmarshalJSON.
func (t RoleTags) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if !t.BotID.IsZero() {
		out["bot_id"] = t.BotID
	}
	if !t.IntegrationID.IsZero() {
		out["integration_id"] = t.IntegrationID
	}
	if t.PremiumSubscriber {
		out["premium_subscriber"] = nil
	}
	return json.Marshal(out)
}

// Role is a guild role.
type Role struct {
	ID           Snowflake `json:"id"`
	Name         string    `json:"name"`
	Color        int       `json:"color"`
	Hoist        bool      `json:"hoist"`
	Icon         *string   `json:"icon,omitempty"`
	UnicodeEmoji *string   `json:"unicode_emoji,omitempty"`
	Position     int       `json:"position"`
	Permissions  string    `json:"permissions"`
	Managed      bool      `json:"managed"`
	Mentionable  bool      `json:"mentionable"`
	Tags         *RoleTags `json:"tags,omitempty"`
}

// Mention renders the role mention markup.
func (r Role) Mention() string {
	return "<@&" + r.ID.String() + ">"
}

// ColorHex renders the role colour as #rrggbb.
func (r Role) ColorHex() string {
	const digits = "0123456789abcdef"
	c := r.Color & 0xFFFFFF
	out := []byte("#000000")
	for i := 6; i >= 1; i-- {
		out[i] = digits[c&0xF]
		c >>= 4
	}
	return string(out)
}

// RoleCreate is the body for creating a guild role. Nil fields are left to
// Discord's defaults.
type RoleCreate struct {
	Name         string  `json:"name,omitempty"`
	Permissions  *string `json:"permissions,omitempty"`
	Color        *int    `json:"color,omitempty"`
	Hoist        *bool   `json:"hoist,omitempty"`
	UnicodeEmoji *string `json:"unicode_emoji,omitempty"`
	Mentionable  *bool   `json:"mentionable,omitempty"`
}
