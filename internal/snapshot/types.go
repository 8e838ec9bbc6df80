package snapshot

// Agent holds the connection timestamps reported for a workspace agent.
type Agent struct {
	FirstConnectedAt string `json:"first_connected_at,omitempty"`
	LastConnectedAt  string `json:"last_connected_at,omitempty"`
}

// Resource is a provisioned resource within a build.
type Resource struct {
	Agents []Agent `json:"agents,omitempty"`
}

// Build is one workspace build as returned by the Coder builds endpoint.
// Only the fields the analytics pipeline reads are modeled.
type Build struct {
	Transition string     `json:"transition,omitempty"`
	CreatedAt  string     `json:"created_at,omitempty"`
	Resources  []Resource `json:"resources,omitempty"`
}

// Workspace is one workspace observation at collection time. The first block
// of fields comes straight from the Coder API; the rest is collector
// enrichment (build history, usage hours, participant data).
type Workspace struct {
	ID                  string `json:"id"`
	Name                string `json:"name,omitempty"`
	OwnerName           string `json:"owner_name"`
	TemplateID          string `json:"template_id,omitempty"`
	TemplateName        string `json:"template_name,omitempty"`
	TemplateDisplayName string `json:"template_display_name,omitempty"`
	CreatedAt           string `json:"created_at,omitempty"`
	LastUsedAt          string `json:"last_used_at,omitempty"`

	AllBuilds       []Build `json:"all_builds,omitempty"`
	TotalUsageHours float64 `json:"total_usage_hours"`
	// ActiveHours is a per-owner, all-time total from the insights API. Every
	// workspace of the same owner carries the same value.
	ActiveHours    float64 `json:"active_hours"`
	TeamName       string  `json:"team_name,omitempty"`
	OwnerFirstName string  `json:"owner_first_name,omitempty"`
	OwnerLastName  string  `json:"owner_last_name,omitempty"`
}

// Template is one template definition at collection time.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// UsageRecord is the running per-(owner, template) usage total carried forward
// snapshot to snapshot. TotalActiveHours and TotalWorkspaceHours are
// monotonically non-decreasing for the lifetime of a key.
type UsageRecord struct {
	OwnerName           string   `json:"owner_name"`
	TemplateName        string   `json:"template_name"`
	TeamName            string   `json:"team_name"`
	TotalActiveHours    float64  `json:"total_active_hours"`
	TotalWorkspaceHours float64  `json:"total_workspace_hours"`
	WorkspaceIDs        []string `json:"workspace_ids"`
	LastUpdated         string   `json:"last_updated"`
	FirstSeen           string   `json:"first_seen"`
}

// WorkspaceUsage is the last-observed raw counter pair for one workspace,
// kept only so the next collection run can compute deltas.
type WorkspaceUsage struct {
	ActiveHours    float64 `json:"active_hours"`
	WorkspaceHours float64 `json:"workspace_hours"`
	OwnerName      string  `json:"owner_name"`
	TemplateName   string  `json:"template_name"`
}

// EngagementDay records which users and workspaces showed activity on one
// calendar date. The slices are sets; element order carries no meaning.
type EngagementDay struct {
	UniqueUsers      []string `json:"unique_users"`
	ActiveWorkspaces []string `json:"active_workspaces"`
}

// Snapshot is one immutable collection-run observation. Earlier collector
// variants omit the accumulated fields, so all of them are optional on decode
// and default to empty.
type Snapshot struct {
	Timestamp              string                    `json:"timestamp"`
	Workspaces             []Workspace               `json:"workspaces"`
	Templates              []Template                `json:"templates"`
	AccumulatedUsage       map[string]UsageRecord    `json:"accumulated_usage,omitempty"`
	WorkspaceUsageSnapshot map[string]WorkspaceUsage `json:"workspace_usage_snapshot,omitempty"`
	DailyEngagement        map[string]EngagementDay  `json:"accumulated_daily_engagement,omitempty"`
}
