package leaderboard

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colthorp/aoclb/internal/api"
)

func ptr[T any](v T) *T { return &v }

func TestReduceSample(t *testing.T) {
	got, err := Reduce(api.SampleLeaderboard())
	require.NoError(t, err)

	want := &Leaderboard{Members: []Member{
		{
			ID:         "1001",
			Name:       ptr("Alice"),
			LocalScore: 42,
			CompletionDayLevel: map[int]api.DayCompletion{
				1: {
					Part1: &api.Star{StarIndex: 3, GetStarTS: 1701407000},
					Part2: &api.Star{StarIndex: 9, GetStarTS: 1701408000},
				},
				2: {Part1: &api.Star{StarIndex: 40, GetStarTS: 1701494000}},
			},
		},
		{
			ID:         "1002",
			LocalScore: 17,
			CompletionDayLevel: map[int]api.DayCompletion{
				1: {Part1: &api.Star{StarIndex: 12, GetStarTS: 1701410000}},
			},
		},
	}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reduce() mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceKeepsEveryMember(t *testing.T) {
	raw := &api.RawLeaderboard{Members: map[string]api.RawMember{}}
	for i := 0; i < 25; i++ {
		id := api.MemberID(fmt.Sprint(i * 7))
		raw.Members[string(id)] = api.RawMember{ID: &id, LocalScore: ptr(i)}
	}

	got, err := Reduce(raw)
	require.NoError(t, err)
	require.Len(t, got.Members, 25)

	for i := 1; i < len(got.Members); i++ {
		assert.Less(t, got.Members[i-1].LocalScore, got.Members[i].LocalScore, "members must be ordered by numeric id")
	}
}

func TestReduceDeterministic(t *testing.T) {
	first, err := Reduce(api.SampleLeaderboard())
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := Reduce(api.SampleLeaderboard())
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("Reduce() not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestReduceDropsUpstreamOnlyFields(t *testing.T) {
	raw, err := api.ParseLeaderboard([]byte(`{
		"event": "2023",
		"owner_id": 1,
		"members": {
			"1": {"id": 1, "name": "A", "local_score": 5, "stars": 2, "global_score": 0, "last_star_ts": 99,
			      "completion_day_level": {"3": {"1": {"star_index": 1, "get_star_ts": 99}}}}
		}
	}`))
	require.NoError(t, err)

	board, err := Reduce(raw)
	require.NoError(t, err)

	out, err := json.Marshal(board)
	require.NoError(t, err)

	var decoded map[string][]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded["members"], 1)

	member := decoded["members"][0]
	assert.ElementsMatch(t, []string{"id", "name", "local_score", "completion_day_level"}, keys(member))
	assert.JSONEq(t, `1`, string(member["id"]))
	assert.JSONEq(t, `{"3": {"1": {"star_index": 1, "get_star_ts": 99}}}`, string(member["completion_day_level"]))
}

func TestReduceMissingCompletionsBecomeEmpty(t *testing.T) {
	id := api.MemberID("9")
	board, err := Reduce(&api.RawLeaderboard{Members: map[string]api.RawMember{
		"9": {ID: &id, LocalScore: ptr(0)},
	}})
	require.NoError(t, err)
	require.Len(t, board.Members, 1)
	assert.NotNil(t, board.Members[0].CompletionDayLevel)
	assert.Empty(t, board.Members[0].CompletionDayLevel)
}

func TestReduceMalformed(t *testing.T) {
	id := api.MemberID("1")

	tests := []struct {
		name string
		raw  *api.RawLeaderboard
	}{
		{"nil document", nil},
		{"missing members", &api.RawLeaderboard{Event: "2023"}},
		{"member without id", &api.RawLeaderboard{Members: map[string]api.RawMember{"1": {LocalScore: ptr(1)}}}},
		{"member without score", &api.RawLeaderboard{Members: map[string]api.RawMember{"1": {ID: &id}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, err := Reduce(tt.raw)
			assert.Nil(t, board)
			assert.ErrorIs(t, err, api.ErrMalformedPayload)
		})
	}
}

func TestReduceEmptyMembers(t *testing.T) {
	board, err := Reduce(&api.RawLeaderboard{Members: map[string]api.RawMember{}})
	require.NoError(t, err)
	assert.NotNil(t, board.Members)
	assert.Empty(t, board.Members)
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
