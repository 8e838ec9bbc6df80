package commands

import (
	"context"
	"fmt"

	"coderops/internal/aggregate"
	"coderops/internal/config"
	"coderops/internal/output"
	"coderops/internal/store"
	"coderops/internal/ui"
)

// RunAggregate recomputes and publishes the analytics aggregate.
func RunAggregate() {
	ui.ShowHeader("Analytics Aggregation")

	cfg, err := config.Load()
	if err != nil {
		output.Fatal(err)
	}

	ctx := context.Background()
	st, err := store.New(ctx, cfg.Bucket, cfg.GCPProject)
	if err != nil {
		output.Fatal(err)
	}
	defer st.Close()

	agg, err := aggregate.Run(ctx, st)
	if err != nil {
		output.Fatal(err)
	}

	pm := agg.PlatformMetrics
	output.Print(map[string]interface{}{
		"timestamp":       agg.Timestamp,
		"totalWorkspaces": pm.TotalWorkspaces,
		"totalUsers":      pm.TotalUsers,
		"teams":           len(agg.TeamMetrics),
		"templates":       len(agg.TemplateMetrics),
	}, func() {
		fmt.Println()
		ui.ShowInfo("workspaces: %d total, %d active, %d inactive, %d stale",
			pm.TotalWorkspaces, pm.ActiveWorkspaces, pm.InactiveWorkspaces, pm.StaleWorkspaces)
		ui.ShowInfo("teams: %d, templates: %d, users: %d",
			len(agg.TeamMetrics), len(agg.TemplateMetrics), pm.TotalUsers)
		ui.ShowSuccess("aggregate published")
	})
}
