package accumulate

import (
	"sort"
	"strings"

	"coderops/internal/snapshot"
)

// daySets is the working representation of one engagement date.
type daySets struct {
	users      map[string]struct{}
	workspaces map[string]struct{}
}

// Engagement merges the activity visible in the current workspaces' build
// histories into the historical per-date ledger. Workspace starts and agent
// connect timestamps both count as activity. History is never truncated here;
// display windows are applied at read time so engagement from since-deleted
// workspaces survives.
func Engagement(current []snapshot.Workspace, historical map[string]snapshot.EngagementDay) map[string]snapshot.EngagementDay {
	days := make(map[string]*daySets, len(historical))
	for date, d := range historical {
		sets := newDaySets()
		for _, u := range d.UniqueUsers {
			sets.users[u] = struct{}{}
		}
		for _, w := range d.ActiveWorkspaces {
			sets.workspaces[w] = struct{}{}
		}
		days[date] = sets
	}

	mark := func(date, owner, workspaceID string) {
		if date == "" {
			return
		}
		sets, ok := days[date]
		if !ok {
			sets = newDaySets()
			days[date] = sets
		}
		sets.users[owner] = struct{}{}
		sets.workspaces[workspaceID] = struct{}{}
	}

	for _, ws := range current {
		owner := lowerOwner(ws.OwnerName)
		for _, build := range ws.AllBuilds {
			if build.Transition == "start" && build.CreatedAt != "" {
				mark(datePart(build.CreatedAt), owner, ws.ID)
			}
			for _, res := range build.Resources {
				for _, agent := range res.Agents {
					if agent.FirstConnectedAt != "" {
						mark(datePart(agent.FirstConnectedAt), owner, ws.ID)
					}
					if agent.LastConnectedAt != "" {
						mark(datePart(agent.LastConnectedAt), owner, ws.ID)
					}
				}
			}
		}
	}

	result := make(map[string]snapshot.EngagementDay, len(days))
	for date, sets := range days {
		result[date] = snapshot.EngagementDay{
			UniqueUsers:      sortedKeys(sets.users),
			ActiveWorkspaces: sortedKeys(sets.workspaces),
		}
	}
	return result
}

func newDaySets() *daySets {
	return &daySets{
		users:      make(map[string]struct{}),
		workspaces: make(map[string]struct{}),
	}
}

// datePart extracts the YYYY-MM-DD prefix of an ISO timestamp.
func datePart(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 {
		return ts[:i]
	}
	return ts
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
