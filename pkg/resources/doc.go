// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package resources models the objects the Discord API exchanges with
// clients: snowflake identifiers, guilds, channels, messages, roles,
// applications and users, together with the enumerations and bit flags
// attached to them.
//
// Every type decodes directly from the JSON Discord sends. Optional fields
// that Discord may send as null are pointers; optional identifiers are the
// zero Snowflake when absent.
package resources
