package metrics

import (
	"time"

	"coderops/internal/registry"
	"coderops/internal/snapshot"
)

// Templates computes per-template metrics: current-workspace activity from
// the registry plus all-time workspace ids and hour totals from accumulated
// usage. Rows follow the template list's order so the output is stable across
// runs.
func Templates(
	reg map[string]registry.Entry,
	templates []snapshot.Template,
	accumulated map[string]snapshot.UsageRecord,
	now time.Time,
) []TemplateMetrics {
	byTemplateID := make(map[string][]registry.Entry)
	for _, ws := range reg {
		if ws.TemplateID == "" || excludedTeam(ws.TeamName) {
			continue
		}
		byTemplateID[ws.TemplateID] = append(byTemplateID[ws.TemplateID], ws)
	}

	result := make([]TemplateMetrics, 0, len(templates))
	for _, tpl := range templates {
		workspaces := byTemplateID[tpl.ID]

		activeCount := 0
		activeUsers := make(map[string]struct{})
		for _, ws := range workspaces {
			if ActivityStatus(ws.LastUsedAt, now) == StatusActive {
				activeCount++
				activeUsers[ws.OwnerName] = struct{}{}
			}
		}

		allIDs := make(map[string]struct{}, len(workspaces))
		for _, ws := range workspaces {
			allIDs[ws.ID] = struct{}{}
		}

		var activeHours, workspaceHours float64
		for _, rec := range accumulated {
			if rec.TemplateName != tpl.Name {
				continue
			}
			team := rec.TeamName
			if team == "" {
				team = "Unassigned"
			}
			if excludedTeam(team) {
				continue
			}
			activeHours += rec.TotalActiveHours
			workspaceHours += rec.TotalWorkspaceHours
			for _, id := range rec.WorkspaceIDs {
				allIDs[id] = struct{}{}
			}
		}
		if workspaceHours == 0 {
			for _, ws := range workspaces {
				workspaceHours += ws.TotalUsageHours
			}
		}

		avgHours := 0.0
		if len(allIDs) > 0 {
			avgHours = workspaceHours / float64(len(allIDs))
		}

		teamDist := make(map[string]int)
		for _, ws := range workspaces {
			teamDist[ws.TeamName]++
		}

		displayName := tpl.DisplayName
		if displayName == "" {
			displayName = tpl.Name
		}

		result = append(result, TemplateMetrics{
			TemplateID:          tpl.ID,
			TemplateName:        tpl.Name,
			TemplateDisplayName: displayName,
			TotalWorkspaces:     len(allIDs),
			ActiveWorkspaces:    activeCount,
			UniqueActiveUsers:   len(activeUsers),
			TotalWorkspaceHours: roundHours(workspaceHours),
			TotalActiveHours:    roundHours(activeHours),
			AvgWorkspaceHours:   round1(avgHours),
			TeamDistribution:    teamDist,
		})
	}

	return result
}
