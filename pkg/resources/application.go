// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resources

// ApplicationFlags are the public flags of an application.
type ApplicationFlags int

const (
	// ApplicationGatewayPresence is the presence intent for bots in 100+ guilds.
	ApplicationGatewayPresence ApplicationFlags = 1 << 12
	// ApplicationGatewayPresenceLimited is the presence intent for bots under 100 guilds.
	ApplicationGatewayPresenceLimited ApplicationFlags = 1 << 13
	// ApplicationGatewayGuildMembers is the members intent for bots in 100+ guilds.
	ApplicationGatewayGuildMembers ApplicationFlags = 1 << 14
	// ApplicationGatewayGuildMembersLimited is the members intent for bots under 100 guilds.
	ApplicationGatewayGuildMembersLimited ApplicationFlags = 1 << 15
	// ApplicationVerificationPendingGuildLimit flags unusual growth that blocks verification.
	ApplicationVerificationPendingGuildLimit ApplicationFlags = 1 << 16
	// ApplicationEmbedded marks an app embedded within the Discord client.
	ApplicationEmbedded ApplicationFlags = 1 << 17
	// ApplicationGatewayMessageContent is the message content intent for bots in 100+ guilds.
	ApplicationGatewayMessageContent ApplicationFlags = 1 << 18
	// ApplicationGatewayMessageContentLimited is the message content intent for bots under 100 guilds.
	ApplicationGatewayMessageContentLimited ApplicationFlags = 1 << 19
)

// Has reports whether every bit of flag is set.
func (f ApplicationFlags) Has(flag ApplicationFlags) bool { return f&flag == flag }

// InstallParams configure the default in-app authorization link.
type InstallParams struct {
	Scopes      []string `json:"scopes"`
	Permissions string   `json:"permissions"`
}

// TeamMember is a member of the team owning an application.
type TeamMember struct {
	MembershipState int       `json:"membership_state"`
	TeamID          Snowflake `json:"team_id"`
	User            User      `json:"user"`
	Role            string    `json:"role,omitempty"`
}

// Team owns an application instead of a single user.
type Team struct {
	ID          Snowflake    `json:"id"`
	Icon        *string      `json:"icon"`
	Members     []TeamMember `json:"members"`
	Name        string       `json:"name"`
	OwnerUserID Snowflake    `json:"owner_user_id"`
}

// Application is a Discord application, the owner of a bot user.
type Application struct {
	ID                  Snowflake `json:"id"`
	Name                string    `json:"name"`
	Icon                *string   `json:"icon"`
	Description         string    `json:"description"`
	RPCOrigins          []string  `json:"rpc_origins,omitempty"`
	BotPublic           bool      `json:"bot_public"`
	BotRequireCodeGrant bool      `json:"bot_require_code_grant"`
	TermsOfServiceURL   string    `json:"terms_of_service_url,omitempty"`
	PrivacyPolicyURL    string    `json:"privacy_policy_url,omitempty"`
	Owner               *User     `json:"owner,omitempty"`
	// Summary is deprecated and always empty; it goes away in v11.
	Summary          string           `json:"summary"`
	VerifyKey        string           `json:"verify_key"`
	Team             *Team            `json:"team"`
	GuildID          Snowflake        `json:"guild_id,omitempty"`
	PrimarySKUID     Snowflake        `json:"primary_sku_id,omitempty"`
	Slug             string           `json:"slug,omitempty"`
	CoverImage       string           `json:"cover_image,omitempty"`
	Flags            ApplicationFlags `json:"flags,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	InstallParams    *InstallParams   `json:"install_params,omitempty"`
	CustomInstallURL string           `json:"custom_install_url,omitempty"`
}
