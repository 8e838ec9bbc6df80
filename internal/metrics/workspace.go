package metrics

import (
	"fmt"
	"sort"
	"time"

	"coderops/internal/registry"
)

// Workspaces computes the detail table: one row per non-excluded registry
// entry, most recently active first. Snapshot history carries no build-state
// information, so the build fields are emitted as fixed placeholders; the
// dashboard knows to treat them as unknown.
func Workspaces(reg map[string]registry.Entry, now time.Time) []WorkspaceMetrics {
	result := make([]WorkspaceMetrics, 0, len(reg))
	for _, ws := range reg {
		if excludedTeam(ws.TeamName) {
			continue
		}

		name := ws.OwnerName
		if ws.OwnerFirstName != "" && ws.OwnerLastName != "" {
			name = fmt.Sprintf("%s %s", ws.OwnerFirstName, ws.OwnerLastName)
		}

		result = append(result, WorkspaceMetrics{
			WorkspaceID:         ws.ID,
			WorkspaceName:       fmt.Sprintf("%s/workspace", ws.OwnerName),
			OwnerGithubHandle:   ws.OwnerName,
			OwnerName:           name,
			TeamName:            ws.TeamName,
			TemplateID:          ws.TemplateID,
			TemplateName:        ws.TemplateName,
			TemplateDisplayName: ws.TemplateDisplayName,
			CurrentStatus:       "unknown",
			HealthStatus:        "unknown",
			CreatedAt:           ws.CreatedAt,
			LastActive:          ws.LastUsedAt,
			LastBuildAt:         ws.CreatedAt,
			DaysSinceCreated:    DaysSince(ws.CreatedAt, now),
			DaysSinceActive:     DaysSince(ws.LastUsedAt, now),
			WorkspaceHours:      ws.TotalUsageHours,
			ActiveHours:         ws.ActiveHours,
			TotalBuilds:         0,
			LastBuildStatus:     "unknown",
			ActivityStatus:      ActivityStatus(ws.LastUsedAt, now),
			RecentActiveDates:   []string{},
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].LastActive != result[j].LastActive {
			return result[i].LastActive > result[j].LastActive
		}
		return result[i].WorkspaceID < result[j].WorkspaceID
	})
	return result
}
