package commands

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	return path
}

func TestReadRoster(t *testing.T) {
	path := writeRoster(t, "team_name\nteam-alpha\nteam-beta\n")

	names, errs := readRoster(path)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(names) != 2 || names[0] != "team-alpha" || names[1] != "team-beta" {
		t.Errorf("names = %v", names)
	}
}

func TestReadRoster_HyphenHeader(t *testing.T) {
	path := writeRoster(t, "Team-Name\nteam-alpha\n")

	names, errs := readRoster(path)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(names) != 1 {
		t.Errorf("names = %v", names)
	}
}

func TestReadRoster_RejectsDuplicates(t *testing.T) {
	path := writeRoster(t, "team_name\nteam-alpha\nteam-alpha\n")

	names, errs := readRoster(path)
	if len(errs) == 0 {
		t.Errorf("duplicates accepted: %v", names)
	}
}

func TestReadRoster_RejectsInvalidNames(t *testing.T) {
	path := writeRoster(t, "team_name\nTeam Alpha!\n")

	_, errs := readRoster(path)
	if len(errs) == 0 {
		t.Errorf("invalid name accepted")
	}
}

func TestReadRoster_MissingColumn(t *testing.T) {
	path := writeRoster(t, "name\nteam-alpha\n")

	_, errs := readRoster(path)
	if len(errs) == 0 {
		t.Errorf("missing team_name column accepted")
	}
}

func TestReadRoster_EmptyRow(t *testing.T) {
	path := writeRoster(t, "team_name\n\nteam-alpha\n")

	// A blank line is skipped by the CSV reader rather than reported.
	names, errs := readRoster(path)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(names) != 1 {
		t.Errorf("names = %v", names)
	}
}
