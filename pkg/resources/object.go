// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resources

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Object is the base form of every identifiable resource.
type Object struct {
	ID Snowflake `json:"id"`
}

// Partial marks a resource that Discord only sent in part. Types embedding it
// carry a subset of the full resource's fields.
type Partial struct{}

// IsPartial always reports true; it lets callers detect partial resources
// through an interface check.
func (Partial) IsPartial() bool { return true }

// PartialApplication is the application form sent with READY: only id and
// flags are present.
type PartialApplication struct {
	Partial
	ID    Snowflake        `json:"id"`
	Flags ApplicationFlags `json:"flags"`
}

// MaxCustomIDLength bounds a component's developer-defined custom ID.
const MaxCustomIDLength = 100

// ErrInvalidCustomID is returned by Component.Validate.
var ErrInvalidCustomID = errors.New("component custom_id must be 1-100 characters")

// Component is the information shared by every message component. Only
// buttons may omit the custom ID.
type Component struct {
	CustomID string `json:"custom_id,omitempty"`
}

// Validate checks the custom ID length when one is set.
func (c Component) Validate() error {
	if c.CustomID == "" {
		return nil
	}
	if n := utf8.RuneCountInString(c.CustomID); n > MaxCustomIDLength {
		return fmt.Errorf("%w: got %d", ErrInvalidCustomID, n)
	}
	return nil
}
