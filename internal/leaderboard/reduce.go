package leaderboard

import (
	"fmt"
	"maps"
	"slices"

	"github.com/colthorp/aoclb/internal/api"
	"github.com/colthorp/aoclb/internal/core"
)

// Member is the served summary of one leaderboard member.
type Member struct {
	ID                 api.MemberID              `json:"id"`
	Name               *string                   `json:"name"`
	LocalScore         int                       `json:"local_score"`
	CompletionDayLevel map[int]api.DayCompletion `json:"completion_day_level"`
}

// Leaderboard is the reduced payload served to clients.
type Leaderboard struct {
	Members []Member `json:"members"`
}

// Reduce projects a raw upstream leaderboard onto the served fields.
// Every raw member yields exactly one Member; members are ordered by id.
func Reduce(raw *api.RawLeaderboard) (*Leaderboard, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", api.ErrMalformedPayload)
	}
	if raw.Members == nil {
		return nil, fmt.Errorf("%w: missing members", api.ErrMalformedPayload)
	}

	members := make([]Member, 0, len(raw.Members))
	for key, m := range raw.Members {
		if m.ID == nil {
			return nil, fmt.Errorf("%w: member %s has no id", api.ErrMalformedPayload, key)
		}
		if m.LocalScore == nil {
			return nil, fmt.Errorf("%w: member %s has no local_score", api.ErrMalformedPayload, key)
		}

		days := m.CompletionDayLevel
		if days == nil {
			days = make(map[int]api.DayCompletion)
		}

		members = append(members, Member{
			ID:                 *m.ID,
			Name:               m.Name,
			LocalScore:         *m.LocalScore,
			CompletionDayLevel: maps.Clone(days),
		})
	}

	slices.SortFunc(members, func(a, b Member) int {
		return core.CompareIDs(string(a.ID), string(b.ID))
	})

	return &Leaderboard{Members: members}, nil
}
