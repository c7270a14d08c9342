// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DiscordEpoch is the first millisecond of 2015 in Unix milliseconds. Snowflake
// timestamps count from here.
const DiscordEpoch int64 = 1420070400000

// Snowflake is a unique identifier for a Discord resource.
//
// Discord uses Twitter's snowflake format. IDs are unique across all of
// Discord, except where a child object shares its parent's ID. On the wire a
// snowflake is a JSON string; numbers are accepted as well.
type Snowflake uint64

// ParseSnowflake parses the decimal string form of a snowflake.
func ParseSnowflake(s string) (Snowflake, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse snowflake %q: %w", s, err)
	}
	return Snowflake(v), nil
}

// MustSnowflake is ParseSnowflake for constants in tests and examples.
func MustSnowflake(s string) Snowflake {
	v, err := ParseSnowflake(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the decimal form of the snowflake.
func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// IsZero reports whether the snowflake is unset.
func (s Snowflake) IsZero() bool {
	return s == 0
}

// Timestamp is the creation time encoded in the snowflake, in UTC.
func (s Snowflake) Timestamp() time.Time {
	return time.UnixMilli(int64(s>>22) + DiscordEpoch).UTC()
}

// WorkerID is the internal worker that generated the snowflake.
func (s Snowflake) WorkerID() uint8 {
	return uint8((s & 0x3E0000) >> 17)
}

// ProcessID is the internal process that generated the snowflake.
func (s Snowflake) ProcessID() uint8 {
	return uint8((s & 0x1F000) >> 12)
}

// Increment is bumped for every ID generated on the same process.
func (s Snowflake) Increment() uint16 {
	return uint16(s & 0xFFF)
}

// MarshalJSON encodes the snowflake as a JSON string, or null when unset.
func (s Snowflake) MarshalJSON() ([]byte, error) {
	if s == 0 {
		return []byte("null"), nil
	}
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		v, err := ParseSnowflake(str)
		if err != nil {
			return err
		}
		*s = v
		return nil
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("parse snowflake %s: %w", data, err)
	}
	*s = Snowflake(v)
	return nil
}
