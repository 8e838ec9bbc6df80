// Package registry builds the deduplicated all-time workspace registry by
// replaying snapshots in chronological order.
package registry

import (
	"coderops/internal/directory"
	"coderops/internal/snapshot"
)

// Entry is the canonical record for one workspace id: the fields from the
// newest snapshot that mentioned it. Entries are never removed; a deleted
// workspace simply stops receiving updates and freezes at its last state.
type Entry struct {
	ID                  string  `json:"id"`
	OwnerName           string  `json:"owner_name"`
	TeamName            string  `json:"team_name"`
	TemplateName        string  `json:"template_name"`
	TemplateDisplayName string  `json:"template_display_name"`
	TemplateID          string  `json:"template_id"`
	CreatedAt           string  `json:"created_at"`
	LastUsedAt          string  `json:"last_used_at"`
	TotalUsageHours     float64 `json:"total_usage_hours"`
	ActiveHours         float64 `json:"active_hours"`
	OwnerFirstName      string  `json:"owner_first_name,omitempty"`
	OwnerLastName       string  `json:"owner_last_name,omitempty"`
	SnapshotTimestamp   string  `json:"snapshot_timestamp"`
}

// Build replays snapshots sorted ascending by timestamp and keeps, per
// workspace id, the fields from the newest snapshot mentioning it. An update
// is skipped unless the incoming snapshot is strictly newer than the one an
// entry came from, so two snapshots with the same timestamp resolve to
// first-processed-wins and replaying an older snapshot after a newer one
// changes nothing.
func Build(snapshots []*snapshot.Snapshot) map[string]Entry {
	reg := make(map[string]Entry)

	for _, snap := range snapshots {
		ts := snap.Timestamp
		for _, ws := range snap.Workspaces {
			if ws.ID == "" {
				continue
			}

			existing, seen := reg[ws.ID]
			if seen && existing.SnapshotTimestamp >= ts {
				continue
			}

			lastUsed := ws.LastUsedAt
			if lastUsed == "" {
				lastUsed = ws.CreatedAt
			}

			teamName := ws.TeamName
			if teamName == "" {
				if seen && existing.TeamName != "" {
					teamName = existing.TeamName
				} else {
					teamName = directory.Unassigned
				}
			}

			reg[ws.ID] = Entry{
				ID:                  ws.ID,
				OwnerName:           ws.OwnerName,
				TeamName:            teamName,
				TemplateName:        ws.TemplateName,
				TemplateDisplayName: ws.TemplateDisplayName,
				TemplateID:          ws.TemplateID,
				CreatedAt:           ws.CreatedAt,
				LastUsedAt:          lastUsed,
				TotalUsageHours:     ws.TotalUsageHours,
				ActiveHours:         ws.ActiveHours,
				OwnerFirstName:      ws.OwnerFirstName,
				OwnerLastName:       ws.OwnerLastName,
				SnapshotTimestamp:   ts,
			}
		}
	}

	return reg
}

// EnrichFromUsage inserts stub entries for workspace ids that appear in
// accumulated usage but were deleted before any snapshot captured them, so
// team membership counts stay correct after hard deletion. Stubs carry zero
// usage hours; owner, team and template come from the usage record.
func EnrichFromUsage(reg map[string]Entry, accumulated map[string]snapshot.UsageRecord) {
	for _, rec := range accumulated {
		team := rec.TeamName
		if team == "" {
			team = directory.Unassigned
		}
		for _, wsID := range rec.WorkspaceIDs {
			if _, ok := reg[wsID]; ok {
				continue
			}
			lastUsed := rec.LastUpdated
			if lastUsed == "" {
				lastUsed = rec.FirstSeen
			}
			reg[wsID] = Entry{
				ID:                  wsID,
				OwnerName:           rec.OwnerName,
				TeamName:            team,
				TemplateName:        rec.TemplateName,
				TemplateDisplayName: rec.TemplateName,
				CreatedAt:           rec.FirstSeen,
				LastUsedAt:          lastUsed,
			}
		}
	}
}
