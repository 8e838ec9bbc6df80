package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"

	"coderops/internal/directory"
)

var (
	githubHandlePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	emailPattern        = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// rosterColumns maps lowercased CSV header names to their index, accepting
// both underscore and hyphen spellings.
func rosterColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
		cols[key] = i
	}
	return cols
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// readParticipantRoster parses a participant roster CSV. github_handle and
// team_name are required per row; email, first_name and last_name are
// optional. Handles are lowercased. Returns entries and validation errors.
func readParticipantRoster(path string) ([]directory.RosterEntry, []string) {
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
	cols := rosterColumns(header)
	for _, required := range []string{"github_handle", "team_name"} {
		if _, ok := cols[required]; !ok {
			return nil, []string{fmt.Sprintf("missing %s column", required)}
		}
	}

	var entries []directory.RosterEntry
	var errs []string
	seen := make(map[string]struct{})
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err != nil {
			break
		}
		handle := field(record, cols, "github_handle")
		team := field(record, cols, "team_name")
		email := field(record, cols, "email")

		if handle == "" {
			errs = append(errs, fmt.Sprintf("row %d: github_handle cannot be empty", row))
			continue
		}
		if !githubHandlePattern.MatchString(handle) {
			errs = append(errs, fmt.Sprintf("row %d: invalid github handle %q", row, handle))
			continue
		}
		handle = strings.ToLower(handle)
		if _, dup := seen[handle]; dup {
			errs = append(errs, fmt.Sprintf("row %d: duplicate github handle %q", row, handle))
			continue
		}
		if !teamNamePattern.MatchString(team) {
			errs = append(errs, fmt.Sprintf("row %d: invalid team name %q", row, team))
			continue
		}
		if email != "" && !emailPattern.MatchString(email) {
			errs = append(errs, fmt.Sprintf("row %d: invalid email %q", row, email))
			continue
		}
		seen[handle] = struct{}{}
		entries = append(entries, directory.RosterEntry{
			GithubHandle: handle,
			TeamName:     team,
			Email:        email,
			FirstName:    field(record, cols, "first_name"),
			LastName:     field(record, cols, "last_name"),
		})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return entries, nil
}

// readHandleRoster parses a CSV with a single required github_handle column,
// returning lowercased handles.
func readHandleRoster(path string) ([]string, []string) {
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
	cols := rosterColumns(header)
	if _, ok := cols["github_handle"]; !ok {
		return nil, []string{"missing github_handle column"}
	}

	var handles []string
	var errs []string
	seen := make(map[string]struct{})
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err != nil {
			break
		}
		handle := field(record, cols, "github_handle")
		if handle == "" {
			errs = append(errs, fmt.Sprintf("row %d: github_handle cannot be empty", row))
			continue
		}
		if !githubHandlePattern.MatchString(handle) {
			errs = append(errs, fmt.Sprintf("row %d: invalid github handle %q", row, handle))
			continue
		}
		handle = strings.ToLower(handle)
		if _, dup := seen[handle]; dup {
			errs = append(errs, fmt.Sprintf("row %d: duplicate github handle %q", row, handle))
			continue
		}
		seen[handle] = struct{}{}
		handles = append(handles, handle)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return handles, nil
}

// webSearchRow is one row of a web search key upload CSV.
type webSearchRow struct {
	teamName string
	key      string
}

// readWebSearchKeys parses a CSV with team_name (or team-name) and
// web_search_api_key columns; both must be non-empty per row.
func readWebSearchKeys(path string) ([]webSearchRow, []string) {
	f, err := os.Open(path)
	if err != nil {
		return nil, []string{fmt.Sprintf("cannot open keys file: %v", err)}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, []string{fmt.Sprintf("cannot read CSV header: %v", err)}
	}
	cols := rosterColumns(header)
	for _, required := range []string{"team_name", "web_search_api_key"} {
		if _, ok := cols[required]; !ok {
			return nil, []string{fmt.Sprintf("missing %s column", required)}
		}
	}

	var rows []webSearchRow
	var errs []string
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err != nil {
			break
		}
		team := field(record, cols, "team_name")
		key := field(record, cols, "web_search_api_key")
		if team == "" {
			errs = append(errs, fmt.Sprintf("row %d: team_name cannot be empty", row))
			continue
		}
		if key == "" {
			errs = append(errs, fmt.Sprintf("row %d: web_search_api_key cannot be empty", row))
			continue
		}
		rows = append(rows, webSearchRow{teamName: team, key: key})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return rows, nil
}
