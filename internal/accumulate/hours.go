package accumulate

import (
	"strings"
	"time"

	"coderops/internal/snapshot"
)

// BuildUsageHours returns the usage hours for a single build: the span
// between the earliest agent first-connect and the latest agent last-connect.
// Builds without usable connection data count as zero, as do unparsable
// timestamps.
func BuildUsageHours(b snapshot.Build) float64 {
	var earliest, latest time.Time
	for _, res := range b.Resources {
		for _, agent := range res.Agents {
			if agent.FirstConnectedAt != "" {
				if t, err := snapshot.ParseTime(agent.FirstConnectedAt); err == nil {
					if earliest.IsZero() || t.Before(earliest) {
						earliest = t
					}
				}
			}
			if agent.LastConnectedAt != "" {
				if t, err := snapshot.ParseTime(agent.LastConnectedAt); err == nil {
					if t.After(latest) {
						latest = t
					}
				}
			}
		}
	}
	if earliest.IsZero() || latest.IsZero() {
		return 0
	}
	return latest.Sub(earliest).Hours()
}

// WorkspaceUsageHours sums build usage hours across a workspace's full build
// history.
func WorkspaceUsageHours(builds []snapshot.Build) float64 {
	total := 0.0
	for _, b := range builds {
		total += BuildUsageHours(b)
	}
	return total
}

// ownerActiveHours maps each owner (lowercase) to the highest active-hours
// value carried by any of their workspaces. The insights counter is per
// owner, so every workspace of an owner should agree; max guards against
// partially enriched input.
func ownerActiveHours(workspaces []snapshot.Workspace) map[string]float64 {
	hours := make(map[string]float64)
	for _, ws := range workspaces {
		owner := lowerOwner(ws.OwnerName)
		if owner == "" {
			continue
		}
		if ws.ActiveHours > hours[owner] {
			hours[owner] = ws.ActiveHours
		} else if _, ok := hours[owner]; !ok {
			hours[owner] = ws.ActiveHours
		}
	}
	return hours
}

func lowerOwner(name string) string {
	return strings.ToLower(name)
}
