package accumulate

import (
	"testing"

	"coderops/internal/snapshot"
)

func TestEngagement_MarksStartAndConnects(t *testing.T) {
	ws := snapshot.Workspace{
		ID:        "ws-1",
		OwnerName: "Alice",
		AllBuilds: []snapshot.Build{
			{
				Transition: "start",
				CreatedAt:  "2026-03-08T09:00:00Z",
				Resources: []snapshot.Resource{
					{Agents: []snapshot.Agent{{
						FirstConnectedAt: "2026-03-08T09:05:00Z",
						LastConnectedAt:  "2026-03-09T17:00:00Z",
					}}},
				},
			},
			{Transition: "stop", CreatedAt: "2026-03-09T18:00:00Z"},
		},
	}

	days := Engagement([]snapshot.Workspace{ws}, nil)

	day, ok := days["2026-03-08"]
	if !ok {
		t.Fatalf("missing 2026-03-08, have %v", days)
	}
	if len(day.UniqueUsers) != 1 || day.UniqueUsers[0] != "alice" {
		t.Errorf("unique_users = %v, want [alice]", day.UniqueUsers)
	}
	if len(day.ActiveWorkspaces) != 1 || day.ActiveWorkspaces[0] != "ws-1" {
		t.Errorf("active_workspaces = %v, want [ws-1]", day.ActiveWorkspaces)
	}
	if _, ok := days["2026-03-09"]; !ok {
		t.Errorf("last-connect date not marked")
	}
	// Stop builds do not mark their created_at date.
	if len(days) != 2 {
		t.Errorf("have %d dates, want 2: %v", len(days), days)
	}
}

func TestEngagement_MergesHistory(t *testing.T) {
	historical := map[string]snapshot.EngagementDay{
		"2026-03-01": {UniqueUsers: []string{"bob"}, ActiveWorkspaces: []string{"ws-old"}},
	}
	ws := snapshot.Workspace{
		ID:        "ws-1",
		OwnerName: "alice",
		AllBuilds: []snapshot.Build{
			{Transition: "start", CreatedAt: "2026-03-01T10:00:00Z"},
		},
	}

	days := Engagement([]snapshot.Workspace{ws}, historical)

	day := days["2026-03-01"]
	if len(day.UniqueUsers) != 2 {
		t.Errorf("unique_users = %v, want alice and bob", day.UniqueUsers)
	}
	if day.UniqueUsers[0] != "alice" || day.UniqueUsers[1] != "bob" {
		t.Errorf("unique_users not sorted: %v", day.UniqueUsers)
	}
	if len(day.ActiveWorkspaces) != 2 {
		t.Errorf("active_workspaces = %v, want ws-1 and ws-old", day.ActiveWorkspaces)
	}
}

func TestEngagement_HistorySurvivesDeletedWorkspaces(t *testing.T) {
	historical := map[string]snapshot.EngagementDay{
		"2026-02-15": {UniqueUsers: []string{"gone"}, ActiveWorkspaces: []string{"ws-gone"}},
	}

	days := Engagement(nil, historical)

	if _, ok := days["2026-02-15"]; !ok {
		t.Errorf("historical engagement dropped: %v", days)
	}
}

func TestEngagement_DeduplicatesWithinDay(t *testing.T) {
	ws := snapshot.Workspace{
		ID:        "ws-1",
		OwnerName: "alice",
		AllBuilds: []snapshot.Build{
			{Transition: "start", CreatedAt: "2026-03-08T09:00:00Z"},
			{Transition: "start", CreatedAt: "2026-03-08T15:00:00Z"},
		},
	}

	days := Engagement([]snapshot.Workspace{ws}, nil)

	day := days["2026-03-08"]
	if len(day.UniqueUsers) != 1 || len(day.ActiveWorkspaces) != 1 {
		t.Errorf("sets not deduplicated: %v", day)
	}
}
