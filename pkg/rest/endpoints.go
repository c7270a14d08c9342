// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ManuGH/retux/pkg/resources"
)

// GatewayInfo is the response of GET /gateway.
type GatewayInfo struct {
	URL string `json:"url"`
}

// SessionStartLimit reports how many IDENTIFYs remain.
type SessionStartLimit struct {
	Total          int `json:"total"`
	Remaining      int `json:"remaining"`
	ResetAfter     int `json:"reset_after"`
	MaxConcurrency int `json:"max_concurrency"`
}

// GatewayBot is the response of GET /gateway/bot.
type GatewayBot struct {
	URL               string            `json:"url"`
	Shards            int               `json:"shards"`
	SessionStartLimit SessionStartLimit `json:"session_start_limit"`
}

func do[T any](ctx context.Context, c *Client, route Route, payload any, opts ...RequestOption) (*T, error) {
	raw, err := c.Request(ctx, route, payload, opts...)
	if err != nil {
		return nil, err
	}
	return decode[T](raw, route)
}

func list[T any](ctx context.Context, c *Client, route Route, payload any, opts ...RequestOption) ([]T, error) {
	out, err := do[[]T](ctx, c, route, payload, opts...)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GetGateway returns the websocket URL to connect to.
func (c *Client) GetGateway(ctx context.Context) (*GatewayInfo, error) {
	return do[GatewayInfo](ctx, c, NewRoute(http.MethodGet, "/gateway", nil), nil)
}

// GetGatewayBot returns the websocket URL plus sharding advice.
func (c *Client) GetGatewayBot(ctx context.Context) (*GatewayBot, error) {
	return do[GatewayBot](ctx, c, NewRoute(http.MethodGet, "/gateway/bot", nil), nil)
}

// GetCurrentApplication returns the bot's application.
func (c *Client) GetCurrentApplication(ctx context.Context) (*resources.Application, error) {
	return do[resources.Application](ctx, c, NewRoute(http.MethodGet, "/oauth2/applications/@me", nil), nil)
}

// GetCurrentUser returns the bot user.
func (c *Client) GetCurrentUser(ctx context.Context) (*resources.User, error) {
	return do[resources.User](ctx, c, NewRoute(http.MethodGet, "/users/@me", nil), nil)
}

// GetGuild fetches a guild. withCounts adds approximate member and presence
// counts.
func (c *Client) GetGuild(ctx context.Context, guildID resources.Snowflake, withCounts bool) (*resources.Guild, error) {
	route := NewRoute(http.MethodGet, "/guilds/{guild_id}", Params{"guild_id": guildID.String()})
	query := map[string]string{"with_counts": strconv.FormatBool(withCounts)}
	return do[resources.Guild](ctx, c, route, query)
}

// GetGuildChannels lists a guild's channels, threads excluded.
func (c *Client) GetGuildChannels(ctx context.Context, guildID resources.Snowflake) ([]resources.Channel, error) {
	route := NewRoute(http.MethodGet, "/guilds/{guild_id}/channels", Params{"guild_id": guildID.String()})
	return list[resources.Channel](ctx, c, route, nil)
}

// GetGuildRoles lists a guild's roles.
func (c *Client) GetGuildRoles(ctx context.Context, guildID resources.Snowflake) ([]resources.Role, error) {
	route := NewRoute(http.MethodGet, "/guilds/{guild_id}/roles", Params{"guild_id": guildID.String()})
	return list[resources.Role](ctx, c, route, nil)
}

// CreateGuildRole creates a role. Pass WithReason for the audit log.
func (c *Client) CreateGuildRole(ctx context.Context, guildID resources.Snowflake, role resources.RoleCreate, opts ...RequestOption) (*resources.Role, error) {
	route := NewRoute(http.MethodPost, "/guilds/{guild_id}/roles", Params{"guild_id": guildID.String()})
	return do[resources.Role](ctx, c, route, role, opts...)
}

// DeleteGuildRole deletes a role.
func (c *Client) DeleteGuildRole(ctx context.Context, guildID, roleID resources.Snowflake, opts ...RequestOption) error {
	route := NewRoute(http.MethodDelete, "/guilds/{guild_id}/roles/{role_id}", Params{
		"guild_id": guildID.String(),
		"role_id":  roleID.String(),
	})
	_, err := c.Request(ctx, route, nil, opts...)
	return err
}

// AddGuildMemberRole grants a role to a member.
func (c *Client) AddGuildMemberRole(ctx context.Context, guildID, userID, roleID resources.Snowflake, opts ...RequestOption) error {
	_, err := c.Request(ctx, memberRoleRoute(http.MethodPut, guildID, userID, roleID), nil, opts...)
	return err
}

// RemoveGuildMemberRole revokes a role from a member.
func (c *Client) RemoveGuildMemberRole(ctx context.Context, guildID, userID, roleID resources.Snowflake, opts ...RequestOption) error {
	_, err := c.Request(ctx, memberRoleRoute(http.MethodDelete, guildID, userID, roleID), nil, opts...)
	return err
}

func memberRoleRoute(method string, guildID, userID, roleID resources.Snowflake) Route {
	return NewRoute(method, "/guilds/{guild_id}/members/{user_id}/roles/{role_id}", Params{
		"guild_id": guildID.String(),
		"user_id":  userID.String(),
		"role_id":  roleID.String(),
	})
}

// GetChannel fetches a channel or thread.
func (c *Client) GetChannel(ctx context.Context, channelID resources.Snowflake) (*resources.Channel, error) {
	route := NewRoute(http.MethodGet, "/channels/{channel_id}", Params{"channel_id": channelID.String()})
	return do[resources.Channel](ctx, c, route, nil)
}

// DeleteChannel deletes a channel, or closes a DM, and returns it.
func (c *Client) DeleteChannel(ctx context.Context, channelID resources.Snowflake, opts ...RequestOption) (*resources.Channel, error) {
	route := NewRoute(http.MethodDelete, "/channels/{channel_id}", Params{"channel_id": channelID.String()})
	return do[resources.Channel](ctx, c, route, nil, opts...)
}

// FollowAnnouncementChannel follows an announcement channel into
// webhookChannelID.
func (c *Client) FollowAnnouncementChannel(ctx context.Context, channelID, webhookChannelID resources.Snowflake, opts ...RequestOption) (*resources.FollowedChannel, error) {
	route := NewRoute(http.MethodPost, "/channels/{channel_id}/followers", Params{"channel_id": channelID.String()})
	body := map[string]string{"webhook_channel_id": webhookChannelID.String()}
	return do[resources.FollowedChannel](ctx, c, route, body, opts...)
}

// TriggerTypingIndicator shows the typing indicator for about ten seconds.
func (c *Client) TriggerTypingIndicator(ctx context.Context, channelID resources.Snowflake) error {
	route := NewRoute(http.MethodPost, "/channels/{channel_id}/typing", Params{"channel_id": channelID.String()})
	_, err := c.Request(ctx, route, nil)
	return err
}

// CreateMessage posts a message. Content longer than MaxMessageLength is
// rejected locally.
func (c *Client) CreateMessage(ctx context.Context, channelID resources.Snowflake, msg resources.MessageCreate) (*resources.Message, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	route := NewRoute(http.MethodPost, "/channels/{channel_id}/messages", Params{"channel_id": channelID.String()})
	return do[resources.Message](ctx, c, route, msg)
}
