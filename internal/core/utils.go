package core

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LeaderboardURL returns the JSON endpoint of a private leaderboard.
func LeaderboardURL(baseURL, year, id string) string {
	return fmt.Sprintf(LeaderboardFmt, strings.TrimRight(baseURL, "/"), year, id)
}

// ParseIDList splits a comma separated list of leaderboard ids.
// Blank items and duplicates are dropped; order is preserved.
func ParseIDList(s string) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		id := strings.TrimSpace(part)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// ParseCacheDuration accepts either a bare number of minutes ("15") or a Go
// duration string ("90s", "1h").
func ParseCacheDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if mins, err := strconv.Atoi(s); err == nil {
		if mins <= 0 {
			return 0, fmt.Errorf("invalid cache duration '%s' (must be positive)", s)
		}
		return time.Duration(mins) * time.Minute, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid cache duration '%s' (expected minutes or a duration like 10m)", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid cache duration '%s' (must be positive)", s)
	}
	return d, nil
}

// CompareIDs orders member ids numerically when both are integers and
// lexicographically otherwise. Numeric ids sort before non-numeric ones.
func CompareIDs(a, b string) int {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		return cmp.Compare(ai, bi)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// FormatTimestamp renders a unix timestamp as RFC3339 in UTC, or "-" for zero.
func FormatTimestamp(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
