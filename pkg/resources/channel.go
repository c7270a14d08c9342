// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resources

import (
	"strconv"
	"time"
)

// ChannelType is the kind of a channel.
type ChannelType int

const (
	ChannelTypeGuildText          ChannelType = 0
	ChannelTypeDM                 ChannelType = 1
	ChannelTypeGuildVoice         ChannelType = 2
	ChannelTypeGroupDM            ChannelType = 3
	ChannelTypeGuildCategory      ChannelType = 4
	ChannelTypeGuildNews          ChannelType = 5
	ChannelTypeGuildNewsThread    ChannelType = 10
	ChannelTypeGuildPublicThread  ChannelType = 11
	ChannelTypeGuildPrivateThread ChannelType = 12
	ChannelTypeGuildStageVoice    ChannelType = 13
	ChannelTypeGuildDirectory     ChannelType = 14
	ChannelTypeGuildForum         ChannelType = 15
)

var channelTypeNames = map[ChannelType]string{
	ChannelTypeGuildText:          "GUILD_TEXT",
	ChannelTypeDM:                 "DM",
	ChannelTypeGuildVoice:         "GUILD_VOICE",
	ChannelTypeGroupDM:            "GROUP_DM",
	ChannelTypeGuildCategory:      "GUILD_CATEGORY",
	ChannelTypeGuildNews:          "GUILD_NEWS",
	ChannelTypeGuildNewsThread:    "GUILD_NEWS_THREAD",
	ChannelTypeGuildPublicThread:  "GUILD_PUBLIC_THREAD",
	ChannelTypeGuildPrivateThread: "GUILD_PRIVATE_THREAD",
	ChannelTypeGuildStageVoice:    "GUILD_STAGE_VOICE",
	ChannelTypeGuildDirectory:     "GUILD_DIRECTORY",
	ChannelTypeGuildForum:         "GUILD_FORUM",
}

func (t ChannelType) String() string {
	if name, ok := channelTypeNames[t]; ok {
		return name
	}
	return "CHANNEL_TYPE(" + strconv.Itoa(int(t)) + ")"
}

// IsThread reports whether the type is one of the thread types.
func (t ChannelType) IsThread() bool {
	switch t {
	case ChannelTypeGuildNewsThread, ChannelTypeGuildPublicThread, ChannelTypeGuildPrivateThread:
		return true
	}
	return false
}

// VideoQualityMode is the camera quality of a voice channel.
type VideoQualityMode int

const (
	// VideoQualityAuto lets Discord choose.
	VideoQualityAuto VideoQualityMode = 1
	// VideoQualityFull is 720p.
	VideoQualityFull VideoQualityMode = 2
)

// ChannelFlags are channel bit flags.
type ChannelFlags int

// ChannelFlagPinned pins a thread to the top of its forum channel.
const ChannelFlagPinned ChannelFlags = 1 << 1

// Has reports whether every bit of flag is set.
func (f ChannelFlags) Has(flag ChannelFlags) bool { return f&flag == flag }

// OverwriteType selects what a permission overwrite targets.
type OverwriteType int

const (
	OverwriteTypeRole   OverwriteType = 0
	OverwriteTypeMember OverwriteType = 1
)

// Overwrite is a permission overwrite on a channel. Allow and Deny are
// permission bit sets in decimal string form.
type Overwrite struct {
	ID    Snowflake     `json:"id"`
	Type  OverwriteType `json:"type"`
	Allow string        `json:"allow"`
	Deny  string        `json:"deny"`
}

// FollowedChannel is returned when following an announcement channel.
type FollowedChannel struct {
	ChannelID Snowflake `json:"channel_id"`
	WebhookID Snowflake `json:"webhook_id"`
}

// ThreadMetadata holds thread-only channel fields.
type ThreadMetadata struct {
	Archived            bool       `json:"archived"`
	AutoArchiveDuration int        `json:"auto_archive_duration"`
	ArchiveTimestamp    time.Time  `json:"archive_timestamp"`
	Locked              bool       `json:"locked"`
	Invitable           *bool      `json:"invitable,omitempty"`
	CreateTimestamp     *time.Time `json:"create_timestamp,omitempty"`
}

// ThreadMember is a user's membership in a thread.
type ThreadMember struct {
	ID            Snowflake `json:"id,omitempty"`
	UserID        Snowflake `json:"user_id,omitempty"`
	JoinTimestamp time.Time `json:"join_timestamp"`
	Flags         int       `json:"flags"`
}

// Channel is a guild channel, DM or thread.
type Channel struct {
	ID                   Snowflake   `json:"id"`
	Type                 ChannelType `json:"type"`
	GuildID              Snowflake   `json:"guild_id,omitempty"` // absent in some gateway events
	Position             *int        `json:"position,omitempty"`
	PermissionOverwrites []Overwrite `json:"permission_overwrites,omitempty"`
	// Name is 1-100 characters.
	Name *string `json:"name,omitempty"`
	// Topic is 0-1024 characters.
	Topic         *string   `json:"topic,omitempty"`
	NSFW          bool      `json:"nsfw,omitempty"`
	LastMessageID Snowflake `json:"last_message_id,omitempty"`
	Bitrate       *int      `json:"bitrate,omitempty"`
	UserLimit     *int      `json:"user_limit,omitempty"`
	// RateLimitPerUser is the slowmode in seconds, up to 21600.
	RateLimitPerUser *int             `json:"rate_limit_per_user,omitempty"`
	Recipients       []User           `json:"recipients,omitempty"`
	Icon             *string          `json:"icon,omitempty"`
	OwnerID          Snowflake        `json:"owner_id,omitempty"`
	ApplicationID    Snowflake        `json:"application_id,omitempty"`
	ParentID         Snowflake        `json:"parent_id,omitempty"`
	LastPinTimestamp *time.Time       `json:"last_pin_timestamp,omitempty"`
	RTCRegion        *string          `json:"rtc_region,omitempty"`
	VideoQualityMode VideoQualityMode `json:"video_quality_mode,omitempty"`
	// MessageCount and MemberCount are approximate and stop counting at 50.
	MessageCount   *int            `json:"message_count,omitempty"`
	MemberCount    *int            `json:"member_count,omitempty"`
	ThreadMetadata *ThreadMetadata `json:"thread_metadata,omitempty"`
	Member         *ThreadMember   `json:"member,omitempty"`
	// DefaultAutoArchiveDuration is one of 60, 1440, 4320, 10080 minutes.
	DefaultAutoArchiveDuration *int         `json:"default_auto_archive_duration,omitempty"`
	Permissions                *string      `json:"permissions,omitempty"`
	Flags                      ChannelFlags `json:"flags,omitempty"`
}

// Mention renders the channel mention markup.
func (c Channel) Mention() string {
	return "<#" + c.ID.String() + ">"
}

// IsThread reports whether the channel is a thread.
func (c Channel) IsThread() bool {
	return c.Type.IsThread()
}
