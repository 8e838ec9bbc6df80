// Package metrics derives the dashboard metrics from the workspace registry
// and accumulated usage. Every calculator is a pure function of
// already-materialized inputs plus an explicit clock value.
package metrics

import (
	"math"
	"time"

	"coderops/internal/snapshot"
)

// Activity thresholds in days.
const (
	ActiveDays   = 7
	InactiveDays = 30
)

// staleDays is the sentinel for unparsable timestamps: maximally stale
// instead of an error.
const staleDays = 9999

// Activity statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusStale    = "stale"
)

// Teams excluded from every metric.
var excludedTeams = map[string]struct{}{
	"facilitators": {},
	"Unassigned":   {},
}

func excludedTeam(name string) bool {
	_, ok := excludedTeams[name]
	return ok
}

// DaysSince returns whole days between a timestamp and now, floored, never
// negative. Unparsable timestamps classify as maximally stale.
func DaysSince(timestamp string, now time.Time) int {
	t, err := snapshot.ParseTime(timestamp)
	if err != nil {
		return staleDays
	}
	days := int(math.Floor(now.Sub(t).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// ActivityStatus classifies a workspace by time since last use: active
// within ActiveDays, inactive within InactiveDays, stale beyond. The
// comparison is on the exact duration, so a workspace is active at exactly
// seven days and inactive one second past it. Unparsable timestamps are
// stale.
func ActivityStatus(lastUsedAt string, now time.Time) string {
	t, err := snapshot.ParseTime(lastUsedAt)
	if err != nil {
		return StatusStale
	}
	d := now.Sub(t)
	switch {
	case d <= ActiveDays*24*time.Hour:
		return StatusActive
	case d <= InactiveDays*24*time.Hour:
		return StatusInactive
	default:
		return StatusStale
	}
}

// roundHours rounds an hour total to the nearest integer for display.
func roundHours(v float64) int {
	return int(math.Round(v))
}

// round1 rounds to one decimal place. Has to match the dashboard's golden
// files exactly.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
