package commands

import (
	"context"
	"fmt"
	"os"

	"coderops/internal/config"
	"coderops/internal/directory"
	"coderops/internal/output"
	"coderops/internal/ui"
)

// RunParticipantsUpdate renames a participant document.
func RunParticipantsUpdate(oldHandle, newHandle string) {
	ui.ShowHeader("Participant Update")

	cfg, err := config.Load()
	if err != nil {
		output.Fatal(err)
	}
	ctx := context.Background()
	dir, err := directory.NewClient(ctx, cfg.FirestoreProject, cfg.FirestoreDatabase)
	if err != nil {
		output.Fatal(err)
	}
	defer dir.Close()

	if err := dir.RenameParticipant(ctx, oldHandle, newHandle); err != nil {
		output.Fatal(err)
	}
	output.Print(map[string]interface{}{
		"old": oldHandle,
		"new": newHandle,
	}, func() {
		ui.ShowSuccess("renamed %q to %q", oldHandle, newHandle)
	})
}

// RunParticipantsSetup creates teams and participants from a roster CSV.
func RunParticipantsSetup(csvPath string, dryRun bool) {
	ui.ShowHeader("Participant Setup")
	if dryRun {
		ui.ShowWarning("dry run: no changes will be made")
	}

	entries, errs := readParticipantRoster(csvPath)
	if len(errs) > 0 {
		for _, e := range errs {
			ui.ShowError(e, nil)
		}
		os.Exit(1)
	}
	if len(entries) == 0 {
		output.Fatal(fmt.Errorf("no participants found in %s", csvPath))
	}
	ui.ShowInfo("found %d participants in roster", len(entries))

	cfg, err := config.Load()
	if err != nil {
		output.Fatal(err)
	}
	ctx := context.Background()
	dir, err := directory.NewClient(ctx, cfg.FirestoreProject, cfg.FirestoreDatabase)
	if err != nil {
		output.Fatal(err)
	}
	defer dir.Close()

	teamsCreated, teamsUpdated, participants, err := dir.SetupParticipants(ctx, entries, dryRun)
	if err != nil {
		output.Fatal(err)
	}

	output.Print(map[string]interface{}{
		"teamsCreated": teamsCreated,
		"teamsUpdated": teamsUpdated,
		"participants": participants,
		"dryRun":       dryRun,
	}, func() {
		ui.ShowSuccess("teams: %d created, %d updated", teamsCreated, teamsUpdated)
		ui.ShowSuccess("participants processed: %d", participants)
	})
}

// RunParticipantsDelete removes participants listed in a roster CSV, cleaning
// up team member lists and deleting teams left empty.
func RunParticipantsDelete(csvPath string, dryRun bool) {
	ui.ShowHeader("Participant Deletion")
	if dryRun {
		ui.ShowWarning("dry run: no changes will be made")
	}

	handles, errs := readHandleRoster(csvPath)
	if len(errs) > 0 {
		for _, e := range errs {
			ui.ShowError(e, nil)
		}
		os.Exit(1)
	}
	if len(handles) == 0 {
		output.Fatal(fmt.Errorf("no handles found in %s", csvPath))
	}
	ui.ShowInfo("deleting %d participants", len(handles))

	cfg, err := config.Load()
	if err != nil {
		output.Fatal(err)
	}
	ctx := context.Background()
	dir, err := directory.NewClient(ctx, cfg.FirestoreProject, cfg.FirestoreDatabase)
	if err != nil {
		output.Fatal(err)
	}
	defer dir.Close()

	deleted, teamsDeleted, skipped, err := dir.DeleteParticipants(ctx, handles, dryRun)
	if err != nil {
		output.Fatal(err)
	}

	output.Print(map[string]interface{}{
		"deleted":      deleted,
		"teamsDeleted": teamsDeleted,
		"skipped":      skipped,
		"dryRun":       dryRun,
	}, func() {
		for _, handle := range skipped {
			ui.ShowWarning("not found, skipped: %s", handle)
		}
		ui.ShowSuccess("deleted %d participants, %d empty teams removed", deleted, teamsDeleted)
	})
}

// RunParticipantsVerify runs the directory consistency check.
func RunParticipantsVerify() {
	ui.ShowHeader("Directory Verification")

	cfg, err := config.Load()
	if err != nil {
		output.Fatal(err)
	}
	ctx := context.Background()
	dir, err := directory.NewClient(ctx, cfg.FirestoreProject, cfg.FirestoreDatabase)
	if err != nil {
		output.Fatal(err)
	}
	defer dir.Close()

	report, err := dir.Verify(ctx)
	if err != nil {
		output.Fatal(err)
	}

	output.Print(map[string]interface{}{
		"teams":         report.Teams,
		"teamsWithKeys": report.TeamsWithKeys,
		"participants":  report.Participants,
		"onboarded":     report.Onboarded,
		"errors":        report.Errors,
		"warnings":      report.Warnings,
	}, func() {
		ui.ShowInfo("teams: %d (%d with API keys)", report.Teams, report.TeamsWithKeys)
		ui.ShowInfo("participants: %d (%d onboarded)", report.Participants, report.Onboarded)
		fmt.Println()
		for _, w := range report.Warnings {
			ui.ShowWarning("%s", w)
		}
		for _, e := range report.Errors {
			ui.ShowError(e, nil)
		}
		if report.Valid() {
			ui.ShowSuccess("verification passed")
		} else {
			ui.ShowError(fmt.Sprintf("verification failed: %d errors, %d warnings", len(report.Errors), len(report.Warnings)), nil)
		}
	})
	if !report.Valid() {
		os.Exit(1)
	}
}
