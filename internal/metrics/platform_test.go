package metrics

import (
	"math"
	"testing"

	"coderops/internal/registry"
	"coderops/internal/snapshot"
)

func TestPlatform_Counts(t *testing.T) {
	reg := map[string]registry.Entry{
		"ws-1": entry("ws-1", "alice", "team-a", "base", "2026-03-09T10:00:00Z", 1),
		"ws-2": entry("ws-2", "bob", "team-a", "base", "2026-02-20T10:00:00Z", 1),
		"ws-3": entry("ws-3", "carol", "team-b", "gpu", "2025-12-01T10:00:00Z", 1),
		"ws-4": entry("ws-4", "staff", "facilitators", "base", "2026-03-09T10:00:00Z", 1),
	}
	teams := []TeamMetrics{{TeamName: "team-a"}, {TeamName: "team-b"}}

	pm := Platform(reg, nil, teams, now)

	// ws-4 is excluded from the breakdown but counted in the total.
	if pm.TotalWorkspaces != 4 {
		t.Errorf("total_workspaces = %d, want 4", pm.TotalWorkspaces)
	}
	if pm.ActiveWorkspaces != 1 || pm.InactiveWorkspaces != 1 || pm.StaleWorkspaces != 1 {
		t.Errorf("breakdown = %d/%d/%d, want 1/1/1",
			pm.ActiveWorkspaces, pm.InactiveWorkspaces, pm.StaleWorkspaces)
	}
	if pm.TotalUsers != 3 {
		t.Errorf("total_users = %d, want 3", pm.TotalUsers)
	}
	if pm.TotalTeams != 2 {
		t.Errorf("total_teams = %d, want 2", pm.TotalTeams)
	}
	if pm.TotalTemplates != 2 {
		t.Errorf("total_templates = %d, want 2", pm.TotalTemplates)
	}
}

func TestPlatform_CountsDeletedWorkspacesFromUsage(t *testing.T) {
	reg := map[string]registry.Entry{
		"ws-1": entry("ws-1", "alice", "team-a", "base", "2026-03-09T10:00:00Z", 1),
	}
	accumulated := map[string]snapshot.UsageRecord{
		"alice_base": {WorkspaceIDs: []string{"ws-1", "ws-deleted"}},
	}

	pm := Platform(reg, accumulated, nil, now)

	if pm.TotalWorkspaces != 2 {
		t.Errorf("total_workspaces = %d, want 2", pm.TotalWorkspaces)
	}
}

func TestPlatform_MostPopularTemplate(t *testing.T) {
	reg := map[string]registry.Entry{
		"ws-1": entry("ws-1", "a", "team-a", "base", "2026-03-09T10:00:00Z", 1),
		"ws-2": entry("ws-2", "b", "team-a", "base", "2026-03-09T10:00:00Z", 1),
		"ws-3": entry("ws-3", "c", "team-a", "gpu", "2026-03-09T10:00:00Z", 1),
	}

	pm := Platform(reg, nil, nil, now)

	if pm.MostPopularTemplate == nil {
		t.Fatalf("most_popular_template is nil")
	}
	if pm.MostPopularTemplate.Name != "base" || pm.MostPopularTemplate.Count != 2 {
		t.Errorf("most_popular_template = %+v, want base/2", pm.MostPopularTemplate)
	}
}

func TestPlatform_PopularTemplateTieIsDeterministic(t *testing.T) {
	reg := map[string]registry.Entry{
		"ws-1": entry("ws-1", "a", "team-a", "zeta", "2026-03-09T10:00:00Z", 1),
		"ws-2": entry("ws-2", "b", "team-a", "alpha", "2026-03-09T10:00:00Z", 1),
	}

	pm := Platform(reg, nil, nil, now)

	if pm.MostPopularTemplate.Name != "alpha" {
		t.Errorf("tie resolved to %q, want alpha", pm.MostPopularTemplate.Name)
	}
}

func TestPlatform_Empty(t *testing.T) {
	pm := Platform(nil, nil, nil, now)

	if pm.TotalWorkspaces != 0 || pm.TotalUsers != 0 {
		t.Errorf("empty platform = %+v", pm)
	}
	if pm.MostPopularTemplate != nil {
		t.Errorf("most_popular_template = %+v, want nil", pm.MostPopularTemplate)
	}
	if pm.AvgDaysSinceActive != 0 {
		t.Errorf("avg_days_since_active = %f, want 0", pm.AvgDaysSinceActive)
	}
}

func TestPlatform_AvgDaysSinceActive(t *testing.T) {
	reg := map[string]registry.Entry{
		"ws-1": entry("ws-1", "a", "team-a", "base", "2026-03-08T12:00:00Z", 1), // 2 days
		"ws-2": entry("ws-2", "b", "team-a", "base", "2026-03-05T12:00:00Z", 1), // 5 days
	}

	pm := Platform(reg, nil, nil, now)

	if math.Abs(pm.AvgDaysSinceActive-3.5) > 0.001 {
		t.Errorf("avg_days_since_active = %f, want 3.5", pm.AvgDaysSinceActive)
	}
}
