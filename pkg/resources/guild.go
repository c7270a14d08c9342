// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resources

import (
	"encoding/json"
	"fmt"
)

// MaxWelcomeChannels is the most channels a welcome screen may show.
const MaxWelcomeChannels = 5

// DefaultMaxVideoChannelUsers applies when Discord omits the field.
const DefaultMaxVideoChannelUsers = 25

// WelcomeScreenChannel is a channel shown in a guild's welcome screen.
type WelcomeScreenChannel struct {
	ChannelID   Snowflake `json:"channel_id"`
	Description string    `json:"description"`
	// EmojiID is set when the emoji is custom rather than unicode.
	EmojiID   Snowflake `json:"emoji_id,omitempty"`
	EmojiName *string   `json:"emoji_name,omitempty"`
}

// WelcomeScreen is the welcome screen of a community guild.
type WelcomeScreen struct {
	Description     *string                `json:"description,omitempty"`
	WelcomeChannels []WelcomeScreenChannel `json:"welcome_channels,omitempty"`
}

// Channels returns the channels shown in the welcome screen.
func (w WelcomeScreen) Channels() []WelcomeScreenChannel {
	return w.WelcomeChannels
}

// Validate enforces the channel limit.
func (w WelcomeScreen) Validate() error {
	if len(w.WelcomeChannels) > MaxWelcomeChannels {
		return fmt.Errorf("welcome screen has %d channels, at most %d allowed", len(w.WelcomeChannels), MaxWelcomeChannels)
	}
	return nil
}

// SystemChannelFlags suppress messages in a guild's system channel.
type SystemChannelFlags int

const (
	SuppressJoinNotifications          SystemChannelFlags = 1 << 0
	SuppressPremiumSubscriptions       SystemChannelFlags = 1 << 1
	SuppressGuildReminderNotifications SystemChannelFlags = 1 << 2
	SuppressJoinNotificationReplies    SystemChannelFlags = 1 << 3
)

// Has reports whether every bit of flag is set.
func (f SystemChannelFlags) Has(flag SystemChannelFlags) bool { return f&flag == flag }

// GuildNSFWLevel is the NSFW filtering level of a guild.
type GuildNSFWLevel int

const (
	NSFWLevelDefault GuildNSFWLevel = iota
	NSFWLevelExplicit
	NSFWLevelSafe
	NSFWLevelAgeRestricted
)

// ExplicitContentFilterLevel selects whose messages are scanned.
type ExplicitContentFilterLevel int

const (
	ExplicitContentFilterDisabled ExplicitContentFilterLevel = iota
	ExplicitContentFilterMembersWithoutRoles
	ExplicitContentFilterAllMembers
)

// VerificationLevel is what a member must satisfy before talking.
type VerificationLevel int

const (
	// VerificationLevelNone sets no requirement.
	VerificationLevelNone VerificationLevel = iota
	// VerificationLevelLow requires a verified e-mail.
	VerificationLevelLow
	// VerificationLevelMedium requires an account older than 5 minutes.
	VerificationLevelMedium
	// VerificationLevelHigh requires guild membership longer than 10 minutes.
	VerificationLevelHigh
	// VerificationLevelVeryHigh requires a verified phone number.
	VerificationLevelVeryHigh
)

// UnavailableGuild is a guild Discord has not sent yet or that suffers an
// outage. Unavailable is true unless Discord says otherwise.
type UnavailableGuild struct {
	Partial
	ID          Snowflake `json:"id"`
	Unavailable bool      `json:"unavailable"`
}

// UnmarshalJSON defaults Unavailable to true when the key is absent.
func (g *UnavailableGuild) UnmarshalJSON(data []byte) error {
	type alias UnavailableGuild
	v := alias{Unavailable: true}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*g = UnavailableGuild(v)
	return nil
}

// Guild is a Discord server.
type Guild struct {
	ID                          Snowflake                  `json:"id"`
	Name                        string                     `json:"name"`
	Icon                        *string                    `json:"icon"`
	IconHash                    *string                    `json:"icon_hash,omitempty"`
	Splash                      *string                    `json:"splash,omitempty"`
	DiscoverySplash             *string                    `json:"discovery_splash,omitempty"`
	Owner                       bool                       `json:"owner,omitempty"`
	OwnerID                     Snowflake                  `json:"owner_id"`
	Permissions                 *string                    `json:"permissions,omitempty"`
	Region                      *string                    `json:"region,omitempty"` // deprecated since v8
	AFKChannelID                Snowflake                  `json:"afk_channel_id,omitempty"`
	AFKTimeout                  int                        `json:"afk_timeout"`
	WidgetEnabled               bool                       `json:"widget_enabled,omitempty"`
	WidgetChannelID             Snowflake                  `json:"widget_channel_id,omitempty"`
	VerificationLevel           VerificationLevel          `json:"verification_level"`
	DefaultMessageNotifications int                        `json:"default_message_notifications"`
	ExplicitContentFilter       ExplicitContentFilterLevel `json:"explicit_content_filter"`
	Roles                       []Role                     `json:"roles,omitempty"`
	Features                    []string                   `json:"features"`
	MFALevel                    int                        `json:"mfa_level"`
	ApplicationID               Snowflake                  `json:"application_id,omitempty"`
	SystemChannelID             Snowflake                  `json:"system_channel_id,omitempty"`
	SystemChannelFlags          SystemChannelFlags         `json:"system_channel_flags"`
	RulesChannelID              Snowflake                  `json:"rules_channel_id,omitempty"`
	MaxPresences                *int                       `json:"max_presences,omitempty"`
	MaxMembers                  *int                       `json:"max_members,omitempty"`
	VanityURLCode               *string                    `json:"vanity_url_code,omitempty"`
	Description                 *string                    `json:"description,omitempty"`
	Banner                      *string                    `json:"banner,omitempty"`
	PremiumTier                 int                        `json:"premium_tier"`
	PremiumSubscriptionCount    *int                       `json:"premium_subscription_count,omitempty"`
	PreferredLocale             string                     `json:"preferred_locale"`
	PublicUpdatesChannelID      Snowflake                  `json:"public_updates_channel_id,omitempty"`
	MaxVideoChannelUsers        int                        `json:"max_video_channel_users,omitempty"`
	ApproximateMemberCount      *int                       `json:"approximate_member_count,omitempty"`
	ApproximatePresenceCount    *int                       `json:"approximate_presence_count,omitempty"`
	WelcomeScreen               *WelcomeScreen             `json:"welcome_screen,omitempty"`
	NSFWLevel                   GuildNSFWLevel             `json:"nsfw_level"`
	PremiumProgressBarEnabled   bool                       `json:"premium_progress_bar_enabled"`
}

// UnmarshalJSON applies the documented default for max_video_channel_users.
func (g *Guild) UnmarshalJSON(data []byte) error {
	type alias Guild
	v := alias{MaxVideoChannelUsers: DefaultMaxVideoChannelUsers}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*g = Guild(v)
	return nil
}

// HasFeature reports whether the guild lists the feature, e.g. "COMMUNITY".
func (g Guild) HasFeature(feature string) bool {
	for _, f := range g.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// Role returns the guild role with the given ID, if the guild carries roles.
func (g Guild) Role(id Snowflake) (Role, bool) {
	for _, r := range g.Roles {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}
