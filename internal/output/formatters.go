// Package output provides output formatting utilities for the aoclb CLI.
package output

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/colthorp/aoclb/internal/api"
	"github.com/colthorp/aoclb/internal/core"
	"github.com/colthorp/aoclb/internal/leaderboard"
)

// PrintJSON writes item as indented JSON.
func PrintJSON(w io.Writer, item any) error {
	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// PrintLeaderboard writes a table of members, highest score first.
func PrintLeaderboard(w io.Writer, board *leaderboard.Leaderboard) error {
	members := ranked(board)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tSTARS\tNAME\tLAST STAR")
	for i, m := range members {
		stars, last := starSummary(m)
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\n", i+1, m.LocalScore, stars, displayName(m), core.FormatTimestamp(last))
	}
	return tw.Flush()
}

// PrintResults writes one section per bulk result.
func PrintResults(w io.Writer, results []leaderboard.Result) error {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s ==\n", r.ID)
		if r.Error != nil {
			fmt.Fprintf(w, "error: %s\n", *r.Error)
			continue
		}
		if err := PrintLeaderboard(w, r.Data); err != nil {
			return err
		}
	}
	return nil
}

func ranked(board *leaderboard.Leaderboard) []leaderboard.Member {
	members := slices.Clone(board.Members)
	slices.SortStableFunc(members, func(a, b leaderboard.Member) int {
		return cmp.Compare(b.LocalScore, a.LocalScore)
	})
	return members
}

func starSummary(m leaderboard.Member) (int, int64) {
	stars := 0
	var last int64
	for _, day := range m.CompletionDayLevel {
		for _, star := range []*api.Star{day.Part1, day.Part2} {
			if star == nil {
				continue
			}
			stars++
			last = max(last, star.GetStarTS)
		}
	}
	return stars, last
}

func displayName(m leaderboard.Member) string {
	if m.Name != nil && strings.TrimSpace(*m.Name) != "" {
		return *m.Name
	}
	return fmt.Sprintf("(anonymous user #%s)", m.ID)
}
