// Package core provides shared constants and helpers for aoclb.
package core

import "time"

// Upstream configuration
const (
	DefaultBaseURL = "https://adventofcode.com"
	LeaderboardFmt = "%s/%s/leaderboard/private/view/%s.json"
	SessionCookie  = "session"
	UserAgent      = "aoclb/" + Version + " (+https://github.com/colthorp/aoclb)"
)

// Environment variables read by the config loader
const (
	SessionCookieEnvVar  = "SESSION_COOKIE"
	YearEnvVar           = "YEAR"
	CacheDurationEnvVar  = "CACHE_DURATION"
	PortEnvVar           = "PORT"
	LeaderboardIDsEnvVar = "LEADERBOARD_IDS"
	BaseURLEnvVar        = "AOC_BASE_URL"
	CORSOriginsEnvVar    = "CORS_ORIGINS"
)

// Defaults
const (
	DefaultYear          = "2023"
	DefaultCacheDuration = 15 * time.Minute
	DefaultPort          = 3000
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultConfigFile    = "aoclb.yaml"
)

// Version is the current aoclb version.
const Version = "0.3.0"
