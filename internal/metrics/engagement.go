package metrics

import (
	"sort"
	"time"

	"coderops/internal/snapshot"
)

// EngagementWindowDays is the default trailing window for the daily
// engagement read view.
const EngagementWindowDays = 90

// Engagement filters the accumulated per-date ledger to a trailing window and
// reports counts per date, ascending. The ledger itself is never truncated;
// this is purely a read view.
func Engagement(accumulated map[string]snapshot.EngagementDay, windowDays int, now time.Time) []DailyEngagement {
	cutoff := now.AddDate(0, 0, -windowDays).Format("2006-01-02")

	result := make([]DailyEngagement, 0, len(accumulated))
	for date, day := range accumulated {
		if date < cutoff {
			continue
		}
		result = append(result, DailyEngagement{
			Date:             date,
			UniqueUsers:      len(day.UniqueUsers),
			ActiveWorkspaces: len(day.ActiveWorkspaces),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}
