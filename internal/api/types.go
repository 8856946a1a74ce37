// Package api provides the HTTP client and wire types for Advent of Code
// private leaderboards.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// MemberID identifies a leaderboard member. Upstream sends it as a JSON
// number; strings are accepted as well.
type MemberID string

// UnmarshalJSON accepts a JSON number or string.
func (m *MemberID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = MemberID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("member id %s is neither a number nor a string", bytes.TrimSpace(b))
	}
	*m = MemberID(n.String())
	return nil
}

// MarshalJSON writes integer ids back as numbers and everything else as strings.
func (m MemberID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(m), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(m) {
		return []byte(m), nil
	}
	return json.Marshal(string(m))
}

// Star is one completed puzzle part.
type Star struct {
	StarIndex int64 `json:"star_index"`
	GetStarTS int64 `json:"get_star_ts"`
}

// DayCompletion holds up to two stars for a single day.
type DayCompletion struct {
	Part1 *Star `json:"1,omitempty"`
	Part2 *Star `json:"2,omitempty"`
}

// RawMember is a member record as returned upstream. Pointer fields are
// required and nil means the field was missing.
type RawMember struct {
	ID                 *MemberID             `json:"id"`
	Name               *string               `json:"name"`
	LocalScore         *int                  `json:"local_score"`
	CompletionDayLevel map[int]DayCompletion `json:"completion_day_level"`

	// Not served; decoded for logging only.
	Stars      int   `json:"stars"`
	LastStarTS int64 `json:"last_star_ts"`
}

// RawLeaderboard is the upstream leaderboard document.
type RawLeaderboard struct {
	Event   string               `json:"event"`
	OwnerID *MemberID            `json:"owner_id,omitempty"`
	Members map[string]RawMember `json:"members"`
}

// Fetcher retrieves one raw leaderboard from upstream.
type Fetcher interface {
	FetchLeaderboard(ctx context.Context, id string) (*RawLeaderboard, error)
}
