// Package collect runs one snapshot collection pass: fetch the current state
// of the Coder deployment, enrich it, roll the usage accumulators forward and
// upload the result.
package collect

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"coderops/internal/accumulate"
	"coderops/internal/coderapi"
	"coderops/internal/directory"
	"coderops/internal/snapshot"
	"coderops/internal/store"
	"coderops/internal/ui"
)

const localSnapshotFile = "coder_snapshot.json"

// excludedTeams are dropped from collection entirely.
var excludedTeams = map[string]struct{}{
	"facilitators":       {},
	directory.Unassigned: {},
}

// Options configures a collection run.
type Options struct {
	Local bool // also write the snapshot to a local file
}

// Run executes one collection pass and returns the uploaded snapshot.
func Run(ctx context.Context, coder *coderapi.Client, dir *directory.Client, st *store.Store, opts Options) (*snapshot.Snapshot, error) {
	previous, err := st.Latest(ctx)
	if err != nil {
		ui.ShowWarning("could not load previous snapshot: %v", err)
	}
	var (
		prevAccumulated map[string]snapshot.UsageRecord
		prevUsage       map[string]snapshot.WorkspaceUsage
		prevEngagement  map[string]snapshot.EngagementDay
		historical      map[string]directory.Participant
	)
	if previous != nil {
		prevAccumulated = previous.AccumulatedUsage
		prevUsage = previous.WorkspaceUsageSnapshot
		prevEngagement = previous.DailyEngagement
		historical = historicalParticipants(previous.Workspaces)
		ui.ShowInfo("previous snapshot: %s (%d workspaces)", previous.Timestamp, len(previous.Workspaces))
	} else {
		ui.ShowInfo("no previous snapshot, starting fresh")
	}

	current, err := dir.Participants(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch participants: %w", err)
	}
	participants := directory.MergeParticipants(historical, current)
	ui.ShowInfo("participant directory: %d entries", len(participants))

	workspaces, err := coder.ListWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	workspaces = filterWorkspaces(workspaces, participants)
	ui.ShowInfo("collecting %d workspaces", len(workspaces))

	activeHours := fetchActiveHours(ctx, coder, workspaces)

	now := time.Now().UTC()
	for i := range workspaces {
		enrich(ctx, coder, &workspaces[i], activeHours, participants)
	}

	templates, err := coder.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	templates = filterTemplates(templates)

	accumulated, wsUsage := accumulate.Usage(workspaces, prevAccumulated, prevUsage, participants, now)
	engagement := accumulate.Engagement(workspaces, prevEngagement)

	snap := snapshot.New(workspaces, templates, accumulated, wsUsage, engagement, now)

	if err := st.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	if err := st.UploadSnapshot(ctx, snap); err != nil {
		return nil, err
	}
	ui.ShowSuccess("uploaded snapshot %s", snap.Timestamp)

	if opts.Local {
		data, err := snap.Encode()
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(localSnapshotFile, data, 0644); err != nil {
			return nil, fmt.Errorf("write local snapshot: %w", err)
		}
		ui.ShowInfo("wrote %s", localSnapshotFile)
	}
	return snap, nil
}

// historicalParticipants rebuilds directory entries from a previous snapshot's
// workspaces, preserving team assignments of since-deleted participants.
func historicalParticipants(workspaces []snapshot.Workspace) map[string]directory.Participant {
	out := make(map[string]directory.Participant)
	for _, ws := range workspaces {
		if ws.TeamName == "" || ws.TeamName == directory.Unassigned {
			continue
		}
		handle := strings.ToLower(ws.OwnerName)
		if handle == "" {
			continue
		}
		out[handle] = directory.Participant{
			TeamName:  ws.TeamName,
			FirstName: ws.OwnerFirstName,
			LastName:  ws.OwnerLastName,
		}
	}
	return out
}

func filterWorkspaces(workspaces []snapshot.Workspace, participants map[string]directory.Participant) []snapshot.Workspace {
	kept := workspaces[:0]
	for _, ws := range workspaces {
		team := directory.Unassigned
		if p, ok := participants[strings.ToLower(ws.OwnerName)]; ok {
			team = p.TeamName
		}
		if _, excluded := excludedTeams[team]; excluded {
			continue
		}
		kept = append(kept, ws)
	}
	return kept
}

func filterTemplates(templates []snapshot.Template) []snapshot.Template {
	kept := templates[:0]
	for _, t := range templates {
		if t.Name == "kubernetes-gpu" {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// fetchActiveHours queries the insights API over the window from the earliest
// workspace creation to now. Failures degrade to an empty map.
func fetchActiveHours(ctx context.Context, coder *coderapi.Client, workspaces []snapshot.Workspace) map[string]float64 {
	now := time.Now().UTC()
	start := now
	for _, ws := range workspaces {
		if t, err := snapshot.ParseTime(ws.CreatedAt); err == nil && t.Before(start) {
			start = t
		}
	}
	start = start.Truncate(24 * time.Hour)
	end := now.Truncate(time.Hour)
	hours, err := coder.UserActivity(ctx, start, end)
	if err != nil {
		ui.ShowWarning("insights query failed, active hours unavailable: %v", err)
		return map[string]float64{}
	}
	return hours
}

func enrich(ctx context.Context, coder *coderapi.Client, ws *snapshot.Workspace, activeHours map[string]float64, participants map[string]directory.Participant) {
	builds, err := coder.WorkspaceBuilds(ctx, ws.ID)
	if err != nil {
		ui.ShowWarning("builds for %s/%s unavailable: %v", ws.OwnerName, ws.Name, err)
		builds = nil
	}
	ws.AllBuilds = builds

	var total float64
	for _, b := range builds {
		total += accumulate.BuildUsageHours(b)
	}
	ws.TotalUsageHours = math.Round(total*100) / 100

	handle := strings.ToLower(ws.OwnerName)
	ws.ActiveHours = activeHours[handle]
	if p, ok := participants[handle]; ok {
		ws.TeamName = p.TeamName
		ws.OwnerFirstName = p.FirstName
		ws.OwnerLastName = p.LastName
	} else {
		ws.TeamName = directory.Unassigned
	}
}
