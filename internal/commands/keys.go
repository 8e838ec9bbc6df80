package commands

import (
	"context"
	"fmt"
	"os"

	"coderops/internal/config"
	"coderops/internal/directory"
	"coderops/internal/keys"
	"coderops/internal/output"
	"coderops/internal/ui"
)

// RunKeysProvision creates one Gemini API key per team and stores it on the
// team's Firestore document.
func RunKeysProvision(overwrite, dryRun bool) {
	ui.ShowHeader("Gemini Key Provisioning")
	if dryRun {
		ui.ShowWarning("dry run: no keys will be created")
	}

	cfg, err := config.Load()
	if err != nil {
		output.Fatal(err)
	}
	if cfg.Bootcamp == "" {
		output.Fatal(fmt.Errorf("bootcamp is not configured (set bootcamp in coderops.yaml)"))
	}

	ctx := context.Background()
	dir, err := directory.NewClient(ctx, cfg.FirestoreProject, cfg.FirestoreDatabase)
	if err != nil {
		output.Fatal(err)
	}
	defer dir.Close()

	prov, err := keys.NewProvisioner(ctx, cfg.GCPProject, cfg.Bootcamp)
	if err != nil {
		output.Fatal(err)
	}
	defer prov.Close()

	teams, err := dir.TeamNames(ctx)
	if err != nil {
		output.Fatal(err)
	}
	if len(teams) == 0 {
		output.Fatal(fmt.Errorf("no teams found"))
	}
	ui.ShowInfo("provisioning keys for %d teams", len(teams))

	provisioned, failed := 0, 0
	for _, team := range teams {
		ui.ShowStep("team %s", team)
		key, keyName, err := prov.EnsureKey(ctx, team, overwrite, dryRun)
		if err != nil {
			ui.ShowError(fmt.Sprintf("provisioning failed for %s", team), err)
			failed++
			continue
		}
		if dryRun {
			provisioned++
			continue
		}
		if err := prov.Validate(ctx, key); err != nil {
			ui.ShowError(fmt.Sprintf("validation failed for %s", team), err)
			failed++
			continue
		}
		if err := dir.SetTeamKey(ctx, team, key, keyName); err != nil {
			ui.ShowError(fmt.Sprintf("storing key failed for %s", team), err)
			failed++
			continue
		}
		ui.ShowSuccess("key %s stored for %s (%s)", keyName, team, keys.Mask(key))
		provisioned++
	}

	output.Print(map[string]interface{}{
		"provisioned": provisioned,
		"failed":      failed,
		"dryRun":      dryRun,
	}, func() {
		fmt.Println()
		ui.ShowInfo("provisioned %d keys, %d failures", provisioned, failed)
	})
	if failed > 0 {
		os.Exit(1)
	}
}
