package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"coderops/internal/registry"
	"coderops/internal/snapshot"
)

// teamUsage is the accumulated-usage contribution for one team.
type teamUsage struct {
	activeHours    float64
	workspaceHours float64
	workspaceIDs   map[string]struct{}
}

// Teams computes per-team metrics for every team ever seen, across both the
// registry and accumulated usage. Excluded teams never appear.
func Teams(
	reg map[string]registry.Entry,
	accumulated map[string]snapshot.UsageRecord,
	engagement map[string]snapshot.EngagementDay,
	now time.Time,
) []TeamMetrics {
	teamWorkspaces := make(map[string][]registry.Entry)
	for _, ws := range reg {
		if excludedTeam(ws.TeamName) {
			continue
		}
		teamWorkspaces[ws.TeamName] = append(teamWorkspaces[ws.TeamName], ws)
	}

	// Teams only visible through accumulated usage still get a row.
	for _, rec := range accumulated {
		team := rec.TeamName
		if team == "" {
			team = "Unassigned"
		}
		if excludedTeam(team) {
			continue
		}
		if _, ok := teamWorkspaces[team]; !ok {
			teamWorkspaces[team] = nil
		}
	}

	usageByTeam := make(map[string]*teamUsage)
	for _, rec := range accumulated {
		team := rec.TeamName
		if team == "" {
			team = "Unassigned"
		}
		if excludedTeam(team) {
			continue
		}
		u, ok := usageByTeam[team]
		if !ok {
			u = &teamUsage{workspaceIDs: make(map[string]struct{})}
			usageByTeam[team] = u
		}
		u.activeHours += rec.TotalActiveHours
		u.workspaceHours += rec.TotalWorkspaceHours
		for _, id := range rec.WorkspaceIDs {
			u.workspaceIDs[id] = struct{}{}
		}
	}

	cutoff := now.AddDate(0, 0, -ActiveDays).Format("2006-01-02")

	result := make([]TeamMetrics, 0, len(teamWorkspaces))
	for teamName, workspaces := range teamWorkspaces {
		usage := usageByTeam[teamName]
		if usage == nil {
			usage = &teamUsage{workspaceIDs: make(map[string]struct{})}
		}

		allIDs := make(map[string]struct{}, len(workspaces)+len(usage.workspaceIDs))
		for _, ws := range workspaces {
			allIDs[ws.ID] = struct{}{}
		}
		for id := range usage.workspaceIDs {
			allIDs[id] = struct{}{}
		}

		members := buildMembers(workspaces, now)
		activeUsers := 0
		for _, m := range members {
			if m.ActivityStatus == StatusActive {
				activeUsers++
			}
		}

		// Distinct dates in the trailing window where any team member shows
		// up in the engagement ledger.
		owners := make(map[string]struct{}, len(workspaces))
		for _, ws := range workspaces {
			owners[strings.ToLower(ws.OwnerName)] = struct{}{}
		}
		activeDates := 0
		for date, day := range engagement {
			if date < cutoff {
				continue
			}
			for _, u := range day.UniqueUsers {
				if _, ok := owners[u]; ok {
					activeDates++
					break
				}
			}
		}

		totalActiveHours := usage.activeHours
		totalWorkspaceHours := usage.workspaceHours
		if totalWorkspaceHours == 0 {
			for _, ws := range workspaces {
				totalWorkspaceHours += ws.TotalUsageHours
			}
		}

		avgHours := 0.0
		if len(allIDs) > 0 {
			avgHours = totalWorkspaceHours / float64(len(allIDs))
		}

		templateDist := make(map[string]int)
		for _, ws := range workspaces {
			templateDist[ws.TemplateDisplayName]++
		}

		result = append(result, TeamMetrics{
			TeamName:             teamName,
			TotalWorkspaces:      len(allIDs),
			UniqueActiveUsers:    activeUsers,
			TotalWorkspaceHours:  roundHours(totalWorkspaceHours),
			TotalActiveHours:     roundHours(totalActiveHours),
			AvgWorkspaceHours:    round1(avgHours),
			ActiveDays:           activeDates,
			TemplateDistribution: templateDist,
			Members:              members,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TeamName < result[j].TeamName
	})
	return result
}

// buildMembers rolls a team's workspaces up to one row per owner, keyed by
// their most recently active workspace, sorted most recent first.
func buildMembers(workspaces []registry.Entry, now time.Time) []Member {
	latest := make(map[string]registry.Entry)
	counts := make(map[string]int)
	for _, ws := range workspaces {
		counts[ws.OwnerName]++
		if cur, ok := latest[ws.OwnerName]; !ok || ws.LastUsedAt > cur.LastUsedAt {
			latest[ws.OwnerName] = ws
		}
	}

	members := make([]Member, 0, len(latest))
	for owner, ws := range latest {
		name := owner
		if ws.OwnerFirstName != "" && ws.OwnerLastName != "" {
			name = fmt.Sprintf("%s %s", ws.OwnerFirstName, ws.OwnerLastName)
		}
		members = append(members, Member{
			GithubHandle:   owner,
			Name:           name,
			WorkspaceCount: counts[owner],
			LastActive:     ws.LastUsedAt,
			ActivityStatus: ActivityStatus(ws.LastUsedAt, now),
		})
	}

	sort.Slice(members, func(i, j int) bool {
		if members[i].LastActive != members[j].LastActive {
			return members[i].LastActive > members[j].LastActive
		}
		return members[i].GithubHandle < members[j].GithubHandle
	})
	return members
}
