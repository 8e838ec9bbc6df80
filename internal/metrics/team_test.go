package metrics

import (
	"math"
	"testing"

	"coderops/internal/registry"
	"coderops/internal/snapshot"
)

func entry(id, owner, team, template string, lastUsed string, hours float64) registry.Entry {
	return registry.Entry{
		ID:                  id,
		OwnerName:           owner,
		TeamName:            team,
		TemplateName:        template,
		TemplateDisplayName: template,
		LastUsedAt:          lastUsed,
		TotalUsageHours:     hours,
	}
}

func TestTeams_SingleSnapshot(t *testing.T) {
	reg := map[string]registry.Entry{
		"ws-1": entry("ws-1", "alice", "team-a", "base", "2026-03-09T10:00:00Z", 2.5),
	}
	accumulated := map[string]snapshot.UsageRecord{
		"alice_base": {
			OwnerName:           "alice",
			TemplateName:        "base",
			TeamName:            "team-a",
			TotalActiveHours:    1.2,
			TotalWorkspaceHours: 2.5,
			WorkspaceIDs:        []string{"ws-1"},
		},
	}

	teams := Teams(reg, accumulated, nil, now)

	if len(teams) != 1 {
		t.Fatalf("have %d teams, want 1", len(teams))
	}
	team := teams[0]
	if team.TeamName != "team-a" {
		t.Errorf("team_name = %q", team.TeamName)
	}
	if team.TotalWorkspaces != 1 {
		t.Errorf("total_workspaces = %d, want 1", team.TotalWorkspaces)
	}
	if team.UniqueActiveUsers != 1 {
		t.Errorf("unique_active_users = %d, want 1", team.UniqueActiveUsers)
	}
	if team.TotalWorkspaceHours != 3 {
		t.Errorf("total_workspace_hours = %d, want 3", team.TotalWorkspaceHours)
	}
	if team.TotalActiveHours != 1 {
		t.Errorf("total_active_hours = %d, want 1", team.TotalActiveHours)
	}
	if len(team.Members) != 1 || team.Members[0].ActivityStatus != StatusActive {
		t.Errorf("members = %+v", team.Members)
	}
}

func TestTeams_ExcludesFacilitatorsAndUnassigned(t *testing.T) {
	reg := map[string]registry.Entry{
		"ws-1": entry("ws-1", "alice", "team-a", "base", "2026-03-09T10:00:00Z", 1),
		"ws-2": entry("ws-2", "staff", "facilitators", "base", "2026-03-09T10:00:00Z", 1),
		"ws-3": entry("ws-3", "ghost", "Unassigned", "base", "2026-03-09T10:00:00Z", 1),
	}

	teams := Teams(reg, nil, nil, now)

	if len(teams) != 1 || teams[0].TeamName != "team-a" {
		t.Errorf("teams = %+v, want only team-a", teams)
	}
}

func TestTeams_AccumulatedOnlyTeamGetsRow(t *testing.T) {
	// The team's only workspace was deleted before any surviving snapshot,
	// but its accumulated hours remain.
	accumulated := map[string]snapshot.UsageRecord{
		"bob_gpu": {
			OwnerName:           "bob",
			TemplateName:        "gpu",
			TeamName:            "team-b",
			TotalActiveHours:    4.0,
			TotalWorkspaceHours: 6.0,
			WorkspaceIDs:        []string{"ws-gone"},
		},
	}

	teams := Teams(nil, accumulated, nil, now)

	if len(teams) != 1 {
		t.Fatalf("have %d teams, want 1", len(teams))
	}
	team := teams[0]
	if team.TeamName != "team-b" {
		t.Errorf("team_name = %q, want team-b", team.TeamName)
	}
	if team.TotalWorkspaces != 1 {
		t.Errorf("total_workspaces = %d, want 1 (from usage ids)", team.TotalWorkspaces)
	}
	if team.TotalWorkspaceHours != 6 {
		t.Errorf("total_workspace_hours = %d, want 6", team.TotalWorkspaceHours)
	}
}

func TestTeams_FallbackToRegistryHours(t *testing.T) {
	// No accumulated workspace hours at all: fall back to summing registry
	// usage hours.
	reg := map[string]registry.Entry{
		"ws-1": entry("ws-1", "alice", "team-a", "base", "2026-03-09T10:00:00Z", 2.0),
		"ws-2": entry("ws-2", "alice", "team-a", "base", "2026-03-08T10:00:00Z", 1.5),
	}

	teams := Teams(reg, nil, nil, now)

	team := teams[0]
	if team.TotalWorkspaceHours != 4 {
		t.Errorf("total_workspace_hours = %d, want 4 (3.5 rounded)", team.TotalWorkspaceHours)
	}
	if math.Abs(team.AvgWorkspaceHours-1.8) > 0.001 {
		t.Errorf("avg_workspace_hours = %f, want 1.8", team.AvgWorkspaceHours)
	}
}

func TestTeams_MemberRollup(t *testing.T) {
	reg := map[string]registry.Entry{
		"ws-1": entry("ws-1", "alice", "team-a", "base", "2026-03-01T10:00:00Z", 1),
		"ws-2": entry("ws-2", "alice", "team-a", "gpu", "2026-03-09T10:00:00Z", 1),
		"ws-3": entry("ws-3", "bob", "team-a", "base", "2026-01-01T10:00:00Z", 1),
	}

	teams := Teams(reg, nil, nil, now)

	members := teams[0].Members
	if len(members) != 2 {
		t.Fatalf("have %d members, want 2", len(members))
	}
	// Sorted most recently active first.
	if members[0].GithubHandle != "alice" {
		t.Errorf("first member = %q, want alice", members[0].GithubHandle)
	}
	if members[0].WorkspaceCount != 2 {
		t.Errorf("alice workspace_count = %d, want 2", members[0].WorkspaceCount)
	}
	if members[0].LastActive != "2026-03-09T10:00:00Z" {
		t.Errorf("alice last_active = %q, want most recent workspace", members[0].LastActive)
	}
	if members[1].ActivityStatus != StatusStale {
		t.Errorf("bob status = %q, want stale", members[1].ActivityStatus)
	}
}

func TestTeams_ActiveDaysWindow(t *testing.T) {
	reg := map[string]registry.Entry{
		"ws-1": entry("ws-1", "alice", "team-a", "base", "2026-03-09T10:00:00Z", 1),
	}
	engagement := map[string]snapshot.EngagementDay{
		"2026-03-09": {UniqueUsers: []string{"alice"}, ActiveWorkspaces: []string{"ws-1"}},
		"2026-03-08": {UniqueUsers: []string{"alice"}, ActiveWorkspaces: []string{"ws-1"}},
		"2026-03-07": {UniqueUsers: []string{"bob"}, ActiveWorkspaces: []string{"ws-2"}},
		"2026-01-01": {UniqueUsers: []string{"alice"}, ActiveWorkspaces: []string{"ws-1"}},
	}

	teams := Teams(reg, nil, engagement, now)

	// Two dates inside the 7-day window mention alice; the old date and the
	// bob-only date do not count.
	if got := teams[0].ActiveDays; got != 2 {
		t.Errorf("active_days = %d, want 2", got)
	}
}
