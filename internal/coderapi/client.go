// Package coderapi talks to a Coder deployment, using the coder CLI for
// listings and the HTTP API for builds and insights.
package coderapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"coderops/internal/snapshot"
)

// Client wraps access to a Coder deployment.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for the deployment at baseURL authenticated with the
// given session token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ListWorkspaces returns every workspace on the deployment, including other
// users' workspaces.
func (c *Client) ListWorkspaces(ctx context.Context) ([]snapshot.Workspace, error) {
	out, err := exec.CommandContext(ctx, "coder", "list", "-a", "-o", "json").Output()
	if err != nil {
		return nil, fmt.Errorf("coder list: %w", err)
	}
	var workspaces []snapshot.Workspace
	if err := json.Unmarshal(out, &workspaces); err != nil {
		return nil, fmt.Errorf("parse coder list output: %w", err)
	}
	return workspaces, nil
}

// templateRow matches the CLI's wrapped template listing rows.
type templateRow struct {
	Template snapshot.Template `json:"Template"`
}

// ListTemplates returns all templates on the deployment.
func (c *Client) ListTemplates(ctx context.Context) ([]snapshot.Template, error) {
	out, err := exec.CommandContext(ctx, "coder", "templates", "list", "-o", "json").Output()
	if err != nil {
		return nil, fmt.Errorf("coder templates list: %w", err)
	}
	// Depending on the CLI version rows are either bare templates or wrapped
	// in a Template field.
	var rows []templateRow
	if err := json.Unmarshal(out, &rows); err == nil && len(rows) > 0 && rows[0].Template.ID != "" {
		templates := make([]snapshot.Template, 0, len(rows))
		for _, r := range rows {
			templates = append(templates, r.Template)
		}
		return templates, nil
	}
	var templates []snapshot.Template
	if err := json.Unmarshal(out, &templates); err != nil {
		return nil, fmt.Errorf("parse coder templates output: %w", err)
	}
	return templates, nil
}

// WorkspaceBuilds returns the build history for a workspace, newest first.
func (c *Client) WorkspaceBuilds(ctx context.Context, workspaceID string) ([]snapshot.Build, error) {
	var builds []snapshot.Build
	if err := c.get(ctx, fmt.Sprintf("/api/v2/workspaces/%s/builds", workspaceID), &builds); err != nil {
		return nil, err
	}
	return builds, nil
}

type activityReport struct {
	Report struct {
		Users []struct {
			Username string  `json:"username"`
			Seconds  float64 `json:"seconds"`
		} `json:"users"`
	} `json:"report"`
}

// UserActivity returns per-user active hours between start and end, keyed by
// lowercased username and rounded to two decimals.
func (c *Client) UserActivity(ctx context.Context, start, end time.Time) (map[string]float64, error) {
	q := url.Values{}
	q.Set("start_time", start.Format("2006-01-02T15:04:05Z"))
	q.Set("end_time", end.Format("2006-01-02T15:04:05Z"))
	var report activityReport
	if err := c.get(ctx, "/api/v2/insights/user-activity?"+q.Encode(), &report); err != nil {
		return nil, err
	}
	hours := make(map[string]float64, len(report.Report.Users))
	for _, u := range report.Report.Users {
		hours[strings.ToLower(u.Username)] = math.Round(u.Seconds/3600*100) / 100
	}
	return hours, nil
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Coder-Session-Token", c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", path, err)
	}
	return nil
}
