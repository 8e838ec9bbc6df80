package accumulate

import (
	"sort"
	"time"

	"coderops/internal/directory"
	"coderops/internal/snapshot"
)

// usageGroup collects the current run's observations for one
// (owner, template) key.
type usageGroup struct {
	ownerName    string
	templateName string
	activeHours  float64
	workspaceIDs []string
	hoursByID    map[string]float64
	lastUsedAt   string
}

// Usage folds the current run's raw counters into the carried-forward
// accumulated totals, keyed by owner/template. It is pure: inputs are not
// mutated and persistence is the caller's concern.
//
// Both counters only ever move forward. Per-workspace hour deltas and the
// per-owner active-hours delta are clamped at zero, so API regressions or a
// stale previous snapshot can never shrink a total.
//
// The insights active-hours counter is per owner and spans all templates, so
// a brand-new key is seeded from the delta against the owner's previous
// baseline, never from the raw counter; seeding the raw value would replay
// hours already credited to the owner's other templates. When one owner opens
// keys on several templates in the same run, the owner-level delta goes to
// the new key whose workspaces were used most recently and the rest seed at
// zero. If any of the owner's keys already exists, that key's delta branch
// accounts for the owner's counter movement, so every new key seeds at zero.
func Usage(
	current []snapshot.Workspace,
	prevAccumulated map[string]snapshot.UsageRecord,
	prevUsage map[string]snapshot.WorkspaceUsage,
	participants map[string]directory.Participant,
	now time.Time,
) (map[string]snapshot.UsageRecord, map[string]snapshot.WorkspaceUsage) {
	ts := snapshot.FormatTime(now)

	accumulated := make(map[string]snapshot.UsageRecord, len(prevAccumulated))
	for key, rec := range prevAccumulated {
		rec.WorkspaceIDs = append([]string(nil), rec.WorkspaceIDs...)
		accumulated[key] = rec
	}

	ownerActive := ownerActiveHours(current)

	wsUsage := make(map[string]snapshot.WorkspaceUsage)
	groups := make(map[string]*usageGroup)
	for _, ws := range current {
		owner := lowerOwner(ws.OwnerName)
		if ws.ID == "" || owner == "" || ws.TemplateName == "" {
			continue
		}

		active := ownerActive[owner]
		wsUsage[ws.ID] = snapshot.WorkspaceUsage{
			ActiveHours:    active,
			WorkspaceHours: ws.TotalUsageHours,
			OwnerName:      owner,
			TemplateName:   ws.TemplateName,
		}

		key := snapshot.UsageKey(owner, ws.TemplateName)
		g, ok := groups[key]
		if !ok {
			g = &usageGroup{
				ownerName:    owner,
				templateName: ws.TemplateName,
				activeHours:  active,
				hoursByID:    make(map[string]float64),
			}
			groups[key] = g
		}
		g.workspaceIDs = append(g.workspaceIDs, ws.ID)
		g.hoursByID[ws.ID] = ws.TotalUsageHours
		if ws.LastUsedAt > g.lastUsedAt {
			g.lastUsedAt = ws.LastUsedAt
		}
	}

	seedKeys := seedAttribution(groups, accumulated)

	for key, g := range groups {
		workspaceDelta := 0.0
		for _, id := range g.workspaceIDs {
			workspaceDelta += max0(g.hoursByID[id] - prevUsage[id].WorkspaceHours)
		}

		teamName := resolveTeam(g.ownerName, key, participants, accumulated)

		if rec, ok := accumulated[key]; ok {
			// All of the key's workspaces carry the same per-owner value, so
			// any member found in the previous snapshot gives the baseline.
			prevActive := 0.0
			for _, id := range g.workspaceIDs {
				if prev, ok := prevUsage[id]; ok {
					prevActive = prev.ActiveHours
					break
				}
			}
			rec.TotalActiveHours += max0(g.activeHours - prevActive)
			rec.TotalWorkspaceHours += workspaceDelta
			rec.LastUpdated = ts
			rec.TeamName = teamName
			rec.WorkspaceIDs = unionIDs(rec.WorkspaceIDs, g.workspaceIDs)
			accumulated[key] = rec
			continue
		}

		activeDelta := 0.0
		if seedKeys[g.ownerName] == key {
			activeDelta = max0(g.activeHours - ownerBaseline(g.ownerName, prevUsage))
		}
		accumulated[key] = snapshot.UsageRecord{
			OwnerName:           g.ownerName,
			TemplateName:        g.templateName,
			TeamName:            teamName,
			TotalActiveHours:    activeDelta,
			TotalWorkspaceHours: workspaceDelta,
			WorkspaceIDs:        unionIDs(nil, g.workspaceIDs),
			LastUpdated:         ts,
			FirstSeen:           ts,
		}
	}

	return accumulated, wsUsage
}

// seedAttribution picks, per owner, which brand-new key receives the owner's
// active-hours delta this run: the one whose workspaces were used most
// recently, tie broken by smallest template name so the choice is stable.
// Owners with an existing key among this run's groups get no seed key at
// all, because the existing key's delta already absorbs the counter
// movement and seeding a new key too would count it twice.
func seedAttribution(groups map[string]*usageGroup, accumulated map[string]snapshot.UsageRecord) map[string]string {
	hasExisting := make(map[string]bool)
	for key, g := range groups {
		if _, exists := accumulated[key]; exists {
			hasExisting[g.ownerName] = true
		}
	}

	chosen := make(map[string]string)
	for key, g := range groups {
		if _, exists := accumulated[key]; exists {
			continue
		}
		if hasExisting[g.ownerName] {
			continue
		}
		cur, ok := chosen[g.ownerName]
		if !ok {
			chosen[g.ownerName] = key
			continue
		}
		c := groups[cur]
		if g.lastUsedAt > c.lastUsedAt || (g.lastUsedAt == c.lastUsedAt && g.templateName < c.templateName) {
			chosen[g.ownerName] = key
		}
	}
	return chosen
}

// ownerBaseline returns the owner's active-hours value from the previous
// snapshot, looked up across every workspace the owner had, whatever its
// template.
func ownerBaseline(owner string, prevUsage map[string]snapshot.WorkspaceUsage) float64 {
	baseline := 0.0
	for _, prev := range prevUsage {
		if prev.OwnerName == owner && prev.ActiveHours > baseline {
			baseline = prev.ActiveHours
		}
	}
	return baseline
}

// resolveTeam applies the team precedence: current directory mapping, then
// the team already stored on the accumulated key, then Unassigned.
func resolveTeam(owner, key string, participants map[string]directory.Participant, accumulated map[string]snapshot.UsageRecord) string {
	if p, ok := participants[owner]; ok && p.TeamName != "" {
		return p.TeamName
	}
	if rec, ok := accumulated[key]; ok && rec.TeamName != "" {
		return rec.TeamName
	}
	return directory.Unassigned
}

// unionIDs merges new workspace ids into an existing set, returning a sorted
// slice so snapshots serialize deterministically.
func unionIDs(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	for _, id := range existing {
		seen[id] = struct{}{}
	}
	for _, id := range added {
		seen[id] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
