package accumulate

import (
	"math"
	"testing"

	"coderops/internal/snapshot"
)

func buildWithAgent(first, last string) snapshot.Build {
	return snapshot.Build{
		Transition: "start",
		Resources: []snapshot.Resource{
			{Agents: []snapshot.Agent{{FirstConnectedAt: first, LastConnectedAt: last}}},
		},
	}
}

func TestBuildUsageHours(t *testing.T) {
	b := buildWithAgent("2026-03-10T08:00:00Z", "2026-03-10T10:30:00Z")
	got := BuildUsageHours(b)
	if math.Abs(got-2.5) > 0.001 {
		t.Errorf("hours = %f, want 2.5", got)
	}
}

func TestBuildUsageHours_SpansAgents(t *testing.T) {
	// Earliest first-connect and latest last-connect across all agents.
	b := snapshot.Build{
		Resources: []snapshot.Resource{
			{Agents: []snapshot.Agent{{FirstConnectedAt: "2026-03-10T09:00:00Z", LastConnectedAt: "2026-03-10T10:00:00Z"}}},
			{Agents: []snapshot.Agent{{FirstConnectedAt: "2026-03-10T08:00:00Z", LastConnectedAt: "2026-03-10T12:00:00Z"}}},
		},
	}
	got := BuildUsageHours(b)
	if math.Abs(got-4.0) > 0.001 {
		t.Errorf("hours = %f, want 4.0", got)
	}
}

func TestBuildUsageHours_NoConnectionData(t *testing.T) {
	cases := []snapshot.Build{
		{},
		{Resources: []snapshot.Resource{{}}},
		{Resources: []snapshot.Resource{{Agents: []snapshot.Agent{{}}}}},
		{Resources: []snapshot.Resource{{Agents: []snapshot.Agent{{FirstConnectedAt: "2026-03-10T08:00:00Z"}}}}},
	}
	for i, b := range cases {
		if got := BuildUsageHours(b); got != 0 {
			t.Errorf("case %d: hours = %f, want 0", i, got)
		}
	}
}

func TestBuildUsageHours_UnparsableTimestamps(t *testing.T) {
	b := buildWithAgent("not-a-timestamp", "also-not")
	if got := BuildUsageHours(b); got != 0 {
		t.Errorf("hours = %f, want 0", got)
	}
}

func TestWorkspaceUsageHours_SumsBuilds(t *testing.T) {
	builds := []snapshot.Build{
		buildWithAgent("2026-03-09T08:00:00Z", "2026-03-09T09:00:00Z"),
		buildWithAgent("2026-03-10T08:00:00Z", "2026-03-10T10:00:00Z"),
		{},
	}
	got := WorkspaceUsageHours(builds)
	if math.Abs(got-3.0) > 0.001 {
		t.Errorf("hours = %f, want 3.0", got)
	}
}
