package metrics

import (
	"time"

	"coderops/internal/registry"
	"coderops/internal/snapshot"
)

// Compute assembles the full aggregate from an enriched registry and the
// latest snapshot's accumulated state.
func Compute(
	reg map[string]registry.Entry,
	templates []snapshot.Template,
	accumulated map[string]snapshot.UsageRecord,
	engagement map[string]snapshot.EngagementDay,
	now time.Time,
) *Aggregate {
	teams := Teams(reg, accumulated, engagement, now)
	return &Aggregate{
		Timestamp:        snapshot.FormatTime(now),
		PlatformMetrics:  Platform(reg, accumulated, teams, now),
		TeamMetrics:      teams,
		WorkspaceMetrics: Workspaces(reg, now),
		TemplateMetrics:  Templates(reg, templates, accumulated, now),
		DailyEngagement:  Engagement(engagement, EngagementWindowDays, now),
	}
}
