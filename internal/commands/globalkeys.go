package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"coderops/internal/config"
	"coderops/internal/directory"
	"coderops/internal/keys"
	"coderops/internal/output"
	"coderops/internal/ui"
)

// RunKeysGlobalSetup writes the bootcamp's shared keys document from an env
// file. With showExisting it only prints what is currently stored.
func RunKeysGlobalSetup(envFile string, dryRun, showExisting bool) {
	ui.ShowHeader("Global Keys Setup")

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

	if showExisting {
		stored, exists, err := dir.GlobalKeys(ctx)
		if err != nil {
			output.Fatal(err)
		}
		if !exists {
			output.Fatal(fmt.Errorf("global keys document does not exist"))
		}
		output.Print(maskedKeys(stored), func() {
			for _, name := range sortedKeyNames(stored) {
				ui.ShowInfo("%s = %s", name, keys.Mask(stored[name]))
			}
		})
		return
	}

	values, err := readEnvFile(envFile)
	if err != nil {
		output.Fatal(err)
	}
	shared := make(map[string]string)
	for _, name := range directory.GlobalKeyNames {
		if v, ok := values[name]; ok && v != "" {
			shared[name] = v
		}
	}
	if missing := missingGlobalKeys(shared); len(missing) > 0 {
		for _, name := range missing {
			ui.ShowError(fmt.Sprintf("missing or empty key: %s", name), nil)
		}
		os.Exit(1)
	}

	if dryRun {
		ui.ShowWarning("dry run: no changes will be made")
		output.Print(maskedKeys(shared), func() {
			for _, name := range sortedKeyNames(shared) {
				ui.ShowInfo("%s = %s", name, keys.Mask(shared[name]))
			}
		})
		return
	}

	if err := dir.SetGlobalKeys(ctx, shared); err != nil {
		output.Fatal(err)
	}
	output.Print(map[string]interface{}{
		"stored": len(shared),
	}, func() {
		ui.ShowSuccess("stored %d global keys", len(shared))
	})
}

// RunKeysWebSearch uploads per-team web search API keys from a CSV.
func RunKeysWebSearch(csvPath string, dryRun bool) {
	ui.ShowHeader("Web Search Key Upload")
	if dryRun {
		ui.ShowWarning("dry run: no changes will be made")
	}

	rows, errs := readWebSearchKeys(csvPath)
	if len(errs) > 0 {
		for _, e := range errs {
			ui.ShowError(e, nil)
		}
		os.Exit(1)
	}
	if len(rows) == 0 {
		output.Fatal(fmt.Errorf("no key rows found in %s", csvPath))
	}
	ui.ShowInfo("uploading keys for %d teams", len(rows))

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

	updated, failed := 0, 0
	for _, row := range rows {
		if dryRun {
			ui.ShowStep("team %s: %s", row.teamName, keys.Mask(row.key))
			updated++
			continue
		}
		if err := dir.SetTeamWebSearchKey(ctx, row.teamName, row.key); err != nil {
			ui.ShowError(fmt.Sprintf("upload failed for %s", row.teamName), err)
			failed++
			continue
		}
		ui.ShowSuccess("key stored for %s (%s)", row.teamName, keys.Mask(row.key))
		updated++
	}

	output.Print(map[string]interface{}{
		"updated": updated,
		"failed":  failed,
		"dryRun":  dryRun,
	}, func() {
		fmt.Println()
		ui.ShowInfo("updated %d teams, %d failures", updated, failed)
	})
	if failed > 0 {
		os.Exit(1)
	}
}

// readEnvFile parses KEY=VALUE lines, skipping blanks and # comments.
// Surrounding single or double quotes on values are stripped.
func readEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open env file: %w", err)
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') || (value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		if name != "" {
			values[name] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return values, nil
}

// missingGlobalKeys returns the required key names absent or empty in values.
func missingGlobalKeys(values map[string]string) []string {
	var missing []string
	for _, name := range directory.GlobalKeyNames {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func maskedKeys(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for name, v := range values {
		out[name] = keys.Mask(v)
	}
	return out
}

func sortedKeyNames(values map[string]string) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
