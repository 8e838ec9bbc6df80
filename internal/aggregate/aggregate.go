// Package aggregate replays every stored snapshot into the workspace registry
// and publishes the computed analytics aggregate.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"coderops/internal/metrics"
	"coderops/internal/registry"
	"coderops/internal/snapshot"
	"coderops/internal/store"
	"coderops/internal/ui"
)

// Run downloads all snapshots, replays them and uploads the aggregate.
func Run(ctx context.Context, st *store.Store) (*metrics.Aggregate, error) {
	names, err := st.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no snapshots found in bucket")
	}
	ui.ShowInfo("downloading %d snapshots", len(names))

	snapshots := st.DownloadAll(ctx, names, store.DefaultDownloadWorkers)
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("no snapshots could be downloaded")
	}
	if len(snapshots) < len(names) {
		ui.ShowWarning("%d of %d snapshots unusable, continuing without them", len(names)-len(snapshots), len(names))
	}

	// The newest snapshot carries the accumulated state and template set.
	latest := snapshots[len(snapshots)-1]
	accumulated := latest.AccumulatedUsage
	if accumulated == nil {
		accumulated = map[string]snapshot.UsageRecord{}
	}
	engagement := latest.DailyEngagement
	if engagement == nil {
		engagement = map[string]snapshot.EngagementDay{}
	}

	reg := registry.Build(snapshots)
	registry.EnrichFromUsage(reg, accumulated)
	ui.ShowInfo("registry: %d workspaces across %d snapshots", len(reg), len(snapshots))

	agg := metrics.Compute(reg, latest.Templates, accumulated, engagement, time.Now().UTC())

	if err := st.UploadAggregate(ctx, agg); err != nil {
		return nil, err
	}
	ui.ShowSuccess("uploaded aggregate %s", agg.Timestamp)
	return agg, nil
}
