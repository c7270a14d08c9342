// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package events

import (
	"encoding/json"

	"github.com/ManuGH/retux/pkg/resources"
)

// Ready is the first DISPATCH of a new session.
type Ready struct {
	V                int                          `json:"v"`
	User             resources.User               `json:"user"`
	Guilds           []resources.UnavailableGuild `json:"guilds"`
	SessionID        string                       `json:"session_id"`
	ResumeGatewayURL string                       `json:"resume_gateway_url"`
	Shard            []int                        `json:"shard,omitempty"`
	Application      resources.PartialApplication `json:"application"`
}

func (*Ready) EventName() string { return NameReady }

// Version is the gateway API version the session speaks.
func (e *Ready) Version() int { return e.V }

// Resumed marks the end of event replay after a RESUME.
type Resumed struct{}

func (*Resumed) EventName() string { return NameResumed }

// Reconnect is sent when Discord wants the client to reconnect and resume.
type Reconnect struct{}

func (*Reconnect) EventName() string { return NameReconnect }

// InvalidSession is sent when a session can no longer be used. Resumable
// reports whether a RESUME may still succeed.
type InvalidSession struct {
	Resumable bool
}

func (*InvalidSession) EventName() string { return NameInvalidSession }

// CanReconnect reports whether the session may be resumed.
func (e *InvalidSession) CanReconnect() bool { return e.Resumable }

// UnmarshalJSON decodes the bare boolean Discord sends as d. Anything that is
// not true means the session is gone.
func (e *InvalidSession) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		e.Resumable = false
		return nil
	}
	e.Resumable = b
	return nil
}

func (e InvalidSession) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Resumable)
}
