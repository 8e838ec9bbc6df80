package commands

import (
	"context"
	"fmt"

	"coderops/internal/coderapi"
	"coderops/internal/collect"
	"coderops/internal/config"
	"coderops/internal/directory"
	"coderops/internal/output"
	"coderops/internal/store"
	"coderops/internal/ui"
)

// RunCollect executes one snapshot collection pass.
func RunCollect(local bool) {
	ui.ShowHeader("Snapshot Collection")

	cfg, err := config.Load()
	if err != nil {
		output.Fatal(err)
	}
	if cfg.CoderURL == "" {
		output.Fatal(fmt.Errorf("coder_url is not configured (set CODER_URL or coderops.yaml)"))
	}
	token, err := config.SessionToken()
	if err != nil {
		output.Fatal(err)
	}

	ctx := context.Background()

	dir, err := directory.NewClient(ctx, cfg.FirestoreProject, cfg.FirestoreDatabase)
	if err != nil {
		output.Fatal(err)
	}
	defer dir.Close()

	st, err := store.New(ctx, cfg.Bucket, cfg.GCPProject)
	if err != nil {
		output.Fatal(err)
	}
	defer st.Close()

	coder := coderapi.New(cfg.CoderURL, token)

	snap, err := collect.Run(ctx, coder, dir, st, collect.Options{Local: local})
	if err != nil {
		output.Fatal(err)
	}

	output.Print(map[string]interface{}{
		"timestamp":  snap.Timestamp,
		"workspaces": len(snap.Workspaces),
		"templates":  len(snap.Templates),
		"usageKeys":  len(snap.AccumulatedUsage),
	}, func() {
		fmt.Println()
		ui.ShowSuccess("collected %d workspaces, %d templates", len(snap.Workspaces), len(snap.Templates))
	})
}
