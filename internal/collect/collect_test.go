package collect

import (
	"testing"

	"coderops/internal/directory"
	"coderops/internal/snapshot"
)

func TestHistoricalParticipants(t *testing.T) {
	workspaces := []snapshot.Workspace{
		{OwnerName: "Alice", TeamName: "team-a", OwnerFirstName: "Alice", OwnerLastName: "Ng"},
		{OwnerName: "bob", TeamName: directory.Unassigned},
		{OwnerName: "carol", TeamName: ""},
	}

	got := historicalParticipants(workspaces)

	if len(got) != 1 {
		t.Fatalf("have %d entries, want 1: %v", len(got), got)
	}
	p, ok := got["alice"]
	if !ok {
		t.Fatalf("handle not lowercased: %v", got)
	}
	if p.TeamName != "team-a" || p.FirstName != "Alice" || p.LastName != "Ng" {
		t.Errorf("participant = %+v", p)
	}
}

func TestFilterWorkspaces(t *testing.T) {
	participants := map[string]directory.Participant{
		"alice": {TeamName: "team-a"},
		"staff": {TeamName: "facilitators"},
	}
	workspaces := []snapshot.Workspace{
		{ID: "ws-1", OwnerName: "alice"},
		{ID: "ws-2", OwnerName: "staff"},
		{ID: "ws-3", OwnerName: "nobody"},
	}

	kept := filterWorkspaces(workspaces, participants)

	if len(kept) != 1 || kept[0].ID != "ws-1" {
		t.Errorf("kept = %v, want only ws-1", kept)
	}
}

func TestFilterTemplates(t *testing.T) {
	templates := []snapshot.Template{
		{ID: "tpl-1", Name: "base"},
		{ID: "tpl-2", Name: "kubernetes-gpu"},
		{ID: "tpl-3", Name: "gpu"},
	}

	kept := filterTemplates(templates)

	if len(kept) != 2 {
		t.Fatalf("kept = %v", kept)
	}
	for _, tpl := range kept {
		if tpl.Name == "kubernetes-gpu" {
			t.Errorf("kubernetes-gpu not filtered")
		}
	}
}
