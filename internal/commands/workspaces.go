package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/term"

	"coderops/internal/output"
	"coderops/internal/snapshot"
	"coderops/internal/ui"
)

// RunWorkspacesDelete bulk-deletes workspaces created before a cutoff date.
func RunWorkspacesDelete(before string, orphan, dryRun, yes bool) {
	ui.ShowHeader("Workspace Cleanup")

	cutoff, err := time.Parse("2006-01-02", before)
	if err != nil {
		output.Fatal(fmt.Errorf("invalid --before date %q, expected YYYY-MM-DD: %w", before, err))
	}

	ctx := context.Background()
	out, err := exec.CommandContext(ctx, "coder", "list", "-a", "-o", "json").Output()
	if err != nil {
		output.Fatal(fmt.Errorf("coder list: %w", err))
	}
	var workspaces []snapshot.Workspace
	if err := json.Unmarshal(out, &workspaces); err != nil {
		output.Fatal(fmt.Errorf("parse coder list output: %w", err))
	}

	var targets []snapshot.Workspace
	for _, ws := range workspaces {
		created, err := snapshot.ParseTime(ws.CreatedAt)
		if err != nil {
			ui.ShowWarning("skipping %s/%s: unparsable created_at %q", ws.OwnerName, ws.Name, ws.CreatedAt)
			continue
		}
		if created.Before(cutoff) {
			targets = append(targets, ws)
		}
	}

	if len(targets) == 0 {
		ui.ShowInfo("no workspaces created before %s", before)
		return
	}

	fmt.Printf("\nWorkspaces created before %s:\n\n", before)
	for _, ws := range targets {
		fmt.Printf("  %-20s %-30s %s\n", ws.OwnerName, ws.Name, ws.CreatedAt)
	}
	fmt.Println()

	if dryRun {
		ui.ShowInfo("dry run: would delete %d workspaces", len(targets))
		return
	}

	if !yes && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Printf("Delete %d workspaces? [y/N]: ", len(targets))
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			ui.ShowInfo("aborted")
			return
		}
	}

	deleted, failed := 0, 0
	for _, ws := range targets {
		name := fmt.Sprintf("%s/%s", ws.OwnerName, ws.Name)
		args := []string{"delete", name, "-y"}
		if orphan {
			args = append(args, "--orphan")
		}
		if err := exec.CommandContext(ctx, "coder", args...).Run(); err != nil {
			ui.ShowError(fmt.Sprintf("failed to delete %s", name), err)
			failed++
			continue
		}
		ui.ShowSuccess("deleted %s", name)
		deleted++
	}

	output.Print(map[string]interface{}{
		"deleted": deleted,
		"failed":  failed,
	}, func() {
		fmt.Println()
		ui.ShowInfo("deleted %d workspaces, %d failures", deleted, failed)
	})
	if failed > 0 {
		os.Exit(1)
	}
}
