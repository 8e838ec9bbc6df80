package metrics

import (
	"testing"

	"coderops/internal/registry"
	"coderops/internal/snapshot"
)

func TestTemplates_Basic(t *testing.T) {
	reg := map[string]registry.Entry{
		"ws-1": {
			ID: "ws-1", OwnerName: "alice", TeamName: "team-a",
			TemplateID: "tpl-1", TemplateName: "base",
			LastUsedAt: "2026-03-09T10:00:00Z", TotalUsageHours: 2.0,
		},
		"ws-2": {
			ID: "ws-2", OwnerName: "bob", TeamName: "team-b",
			TemplateID: "tpl-1", TemplateName: "base",
			LastUsedAt: "2025-12-01T10:00:00Z", TotalUsageHours: 1.0,
		},
	}
	templates := []snapshot.Template{
		{ID: "tpl-1", Name: "base", DisplayName: "Base Workspace"},
		{ID: "tpl-2", Name: "gpu"},
	}
	accumulated := map[string]snapshot.UsageRecord{
		"alice_base": {
			OwnerName: "alice", TemplateName: "base", TeamName: "team-a",
			TotalActiveHours: 3.0, TotalWorkspaceHours: 5.0,
			WorkspaceIDs: []string{"ws-1"},
		},
	}

	result := Templates(reg, templates, accumulated, now)

	if len(result) != 2 {
		t.Fatalf("have %d rows, want 2", len(result))
	}
	base := result[0]
	if base.TemplateDisplayName != "Base Workspace" {
		t.Errorf("display_name = %q", base.TemplateDisplayName)
	}
	if base.TotalWorkspaces != 2 {
		t.Errorf("total_workspaces = %d, want 2", base.TotalWorkspaces)
	}
	if base.ActiveWorkspaces != 1 || base.UniqueActiveUsers != 1 {
		t.Errorf("active = %d/%d, want 1/1", base.ActiveWorkspaces, base.UniqueActiveUsers)
	}
	if base.TotalWorkspaceHours != 5 {
		t.Errorf("total_workspace_hours = %d, want accumulated 5", base.TotalWorkspaceHours)
	}
	if base.TeamDistribution["team-a"] != 1 || base.TeamDistribution["team-b"] != 1 {
		t.Errorf("team_distribution = %v", base.TeamDistribution)
	}

	gpu := result[1]
	if gpu.TemplateDisplayName != "gpu" {
		t.Errorf("missing display name should fall back to %q, got %q", "gpu", gpu.TemplateDisplayName)
	}
	if gpu.TotalWorkspaces != 0 {
		t.Errorf("gpu total_workspaces = %d, want 0", gpu.TotalWorkspaces)
	}
}

func TestTemplates_FallbackToRegistryHours(t *testing.T) {
	reg := map[string]registry.Entry{
		"ws-1": {
			ID: "ws-1", OwnerName: "alice", TeamName: "team-a",
			TemplateID: "tpl-1", TemplateName: "base",
			LastUsedAt: "2026-03-09T10:00:00Z", TotalUsageHours: 2.4,
		},
	}
	templates := []snapshot.Template{{ID: "tpl-1", Name: "base"}}

	result := Templates(reg, templates, nil, now)

	if result[0].TotalWorkspaceHours != 2 {
		t.Errorf("total_workspace_hours = %d, want 2 (registry fallback)", result[0].TotalWorkspaceHours)
	}
}

func TestTemplates_ExcludedTeamsSkipped(t *testing.T) {
	reg := map[string]registry.Entry{
		"ws-1": {
			ID: "ws-1", OwnerName: "staff", TeamName: "facilitators",
			TemplateID: "tpl-1", TemplateName: "base",
			LastUsedAt: "2026-03-09T10:00:00Z",
		},
	}
	templates := []snapshot.Template{{ID: "tpl-1", Name: "base"}}

	result := Templates(reg, templates, nil, now)

	if result[0].TotalWorkspaces != 0 {
		t.Errorf("excluded team counted: %+v", result[0])
	}
}
