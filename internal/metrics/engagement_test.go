package metrics

import (
	"testing"

	"coderops/internal/snapshot"
)

func TestEngagement_WindowAndOrder(t *testing.T) {
	accumulated := map[string]snapshot.EngagementDay{
		"2026-03-09": {UniqueUsers: []string{"alice", "bob"}, ActiveWorkspaces: []string{"ws-1"}},
		"2026-03-01": {UniqueUsers: []string{"alice"}, ActiveWorkspaces: []string{"ws-1", "ws-2"}},
		"2025-11-01": {UniqueUsers: []string{"old"}, ActiveWorkspaces: []string{"ws-old"}},
	}

	result := Engagement(accumulated, EngagementWindowDays, now)

	if len(result) != 2 {
		t.Fatalf("have %d rows, want 2 (old date outside window)", len(result))
	}
	if result[0].Date != "2026-03-01" || result[1].Date != "2026-03-09" {
		t.Errorf("dates not ascending: %v", result)
	}
	if result[1].UniqueUsers != 2 || result[1].ActiveWorkspaces != 1 {
		t.Errorf("counts = %+v", result[1])
	}
}

func TestEngagement_Empty(t *testing.T) {
	result := Engagement(nil, EngagementWindowDays, now)
	if len(result) != 0 {
		t.Errorf("rows = %v, want none", result)
	}
}
