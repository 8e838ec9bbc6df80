package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"

	"coderops/internal/config"
	"coderops/internal/directory"
	"coderops/internal/output"
	"coderops/internal/ui"
)

var teamNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,39}$`)

// RunTeamsSetup creates team documents from a CSV roster.
func RunTeamsSetup(csvPath string, dryRun bool) {
	ui.ShowHeader("Team Setup")
	if dryRun {
		ui.ShowWarning("dry run: no changes will be made")
	}

	names, errs := readRoster(csvPath)
	if len(errs) > 0 {
		for _, e := range errs {
			ui.ShowError(e, nil)
		}
		os.Exit(1)
	}
	if len(names) == 0 {
		output.Fatal(fmt.Errorf("no valid team names found in %s", csvPath))
	}
	ui.ShowInfo("found %d teams in roster", len(names))

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

	created, updated, err := dir.SetupTeams(ctx, names, dryRun)
	if err != nil {
		output.Fatal(err)
	}

	output.Print(map[string]interface{}{
		"created": created,
		"updated": updated,
		"dryRun":  dryRun,
	}, func() {
		ui.ShowSuccess("teams processed: %d created, %d updated", created, updated)
	})
}

// readRoster parses team names from a CSV with a team_name (or team-name)
// column. Returns the names and any validation errors.
func readRoster(path string) ([]string, []string) {
	f, err := os.Open(path)
	if err != nil {
		return nil, []string{fmt.Sprintf("cannot open roster: %v", err)}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, []string{fmt.Sprintf("cannot read CSV header: %v", err)}
	}
	col := -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "team_name", "team-name":
			col = i
		}
	}
	if col < 0 {
		return nil, []string{"missing team_name column"}
	}

	var names []string
	var errs []string
	seen := make(map[string]struct{})
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err != nil {
			break
		}
		if col >= len(record) {
			continue
		}
		name := strings.TrimSpace(record[col])
		if name == "" {
			errs = append(errs, fmt.Sprintf("row %d: team_name cannot be empty", row))
			continue
		}
		if !teamNamePattern.MatchString(name) {
			errs = append(errs, fmt.Sprintf("row %d: invalid team name %q", row, name))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Sprintf("row %d: duplicate team name %q", row, name))
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return names, nil
}
