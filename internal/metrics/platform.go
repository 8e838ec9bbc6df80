package metrics

import (
	"sort"
	"time"

	"coderops/internal/registry"
	"coderops/internal/snapshot"
)

// Platform computes the global aggregate over the registry and accumulated
// usage. Workspace totals count every id ever seen; the activity breakdown
// and averages cover non-excluded registry entries only.
func Platform(
	reg map[string]registry.Entry,
	accumulated map[string]snapshot.UsageRecord,
	teams []TeamMetrics,
	now time.Time,
) PlatformMetrics {
	allIDs := make(map[string]struct{}, len(reg))
	for id := range reg {
		allIDs[id] = struct{}{}
	}
	for _, rec := range accumulated {
		for _, id := range rec.WorkspaceIDs {
			allIDs[id] = struct{}{}
		}
	}

	var active, inactive, stale int
	users := make(map[string]struct{})
	templates := make(map[string]struct{})
	type templateCount struct {
		count       int
		displayName string
	}
	counts := make(map[string]*templateCount)
	var daysTotal, daysN int

	for _, ws := range reg {
		if excludedTeam(ws.TeamName) {
			continue
		}
		switch ActivityStatus(ws.LastUsedAt, now) {
		case StatusActive:
			active++
		case StatusInactive:
			inactive++
		default:
			stale++
		}
		users[ws.OwnerName] = struct{}{}
		if ws.TemplateName != "" {
			templates[ws.TemplateName] = struct{}{}
			tc, ok := counts[ws.TemplateName]
			if !ok {
				tc = &templateCount{}
				counts[ws.TemplateName] = tc
			}
			tc.count++
			tc.displayName = ws.TemplateDisplayName
		}
		daysTotal += DaysSince(ws.LastUsedAt, now)
		daysN++
	}

	// Ties between equally popular templates are not meaningfully orderable;
	// iterate sorted names so the winner is at least deterministic.
	var popular *PopularTemplate
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tc := counts[name]
		if popular == nil || tc.count > popular.Count {
			popular = &PopularTemplate{
				Name:        name,
				DisplayName: tc.displayName,
				Count:       tc.count,
			}
		}
	}

	avgDays := 0.0
	if daysN > 0 {
		avgDays = round1(float64(daysTotal) / float64(daysN))
	}

	return PlatformMetrics{
		TotalWorkspaces:     len(allIDs),
		TotalUsers:          len(users),
		TotalTeams:          len(teams),
		ActiveWorkspaces:    active,
		InactiveWorkspaces:  inactive,
		StaleWorkspaces:     stale,
		TotalTemplates:      len(templates),
		MostPopularTemplate: popular,
		HealthyRate:         0.0,
		AvgDaysSinceActive:  avgDays,
	}
}
