package metrics

// Member is one participant row inside a team's metrics, keyed by their most
// recently active workspace.
type Member struct {
	GithubHandle   string `json:"github_handle"`
	Name           string `json:"name"`
	WorkspaceCount int    `json:"workspace_count"`
	LastActive     string `json:"last_active"`
	ActivityStatus string `json:"activity_status"`
}

// TeamMetrics is the per-team aggregate consumed by the dashboard.
type TeamMetrics struct {
	TeamName             string         `json:"team_name"`
	TotalWorkspaces      int            `json:"total_workspaces"`
	UniqueActiveUsers    int            `json:"unique_active_users"`
	TotalWorkspaceHours  int            `json:"total_workspace_hours"`
	TotalActiveHours     int            `json:"total_active_hours"`
	AvgWorkspaceHours    float64        `json:"avg_workspace_hours"`
	ActiveDays           int            `json:"active_days"`
	TemplateDistribution map[string]int `json:"template_distribution"`
	Members              []Member       `json:"members"`
}

// PopularTemplate identifies the template with the most current workspaces.
type PopularTemplate struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Count       int    `json:"count"`
}

// PlatformMetrics is the global aggregate.
type PlatformMetrics struct {
	TotalWorkspaces     int              `json:"total_workspaces"`
	TotalUsers          int              `json:"total_users"`
	TotalTeams          int              `json:"total_teams"`
	ActiveWorkspaces    int              `json:"active_workspaces"`
	InactiveWorkspaces  int              `json:"inactive_workspaces"`
	StaleWorkspaces     int              `json:"stale_workspaces"`
	TotalTemplates      int              `json:"total_templates"`
	MostPopularTemplate *PopularTemplate `json:"most_popular_template"`
	// HealthyRate is a placeholder: health is not reconstructible from
	// snapshot history.
	HealthyRate        float64 `json:"healthy_rate"`
	AvgDaysSinceActive float64 `json:"avg_days_since_active"`
}

// TemplateMetrics is the per-template aggregate.
type TemplateMetrics struct {
	TemplateID          string         `json:"template_id"`
	TemplateName        string         `json:"template_name"`
	TemplateDisplayName string         `json:"template_display_name"`
	TotalWorkspaces     int            `json:"total_workspaces"`
	ActiveWorkspaces    int            `json:"active_workspaces"`
	UniqueActiveUsers   int            `json:"unique_active_users"`
	TotalWorkspaceHours int            `json:"total_workspace_hours"`
	TotalActiveHours    int            `json:"total_active_hours"`
	AvgWorkspaceHours   float64        `json:"avg_workspace_hours"`
	TeamDistribution    map[string]int `json:"team_distribution"`
}

// DailyEngagement is one read-view row: counts, not the raw sets.
type DailyEngagement struct {
	Date             string `json:"date"`
	UniqueUsers      int    `json:"unique_users"`
	ActiveWorkspaces int    `json:"active_workspaces"`
}

// WorkspaceMetrics is one row of the workspace detail table. The build-state
// fields (current_status, health_status, total_builds, last_build_status,
// last_build_at, recent_active_dates) are deliberate placeholders: that
// information is not reconstructible from snapshot history alone.
type WorkspaceMetrics struct {
	WorkspaceID         string   `json:"workspace_id"`
	WorkspaceName       string   `json:"workspace_name"`
	OwnerGithubHandle   string   `json:"owner_github_handle"`
	OwnerName           string   `json:"owner_name"`
	TeamName            string   `json:"team_name"`
	TemplateID          string   `json:"template_id"`
	TemplateName        string   `json:"template_name"`
	TemplateDisplayName string   `json:"template_display_name"`
	CurrentStatus       string   `json:"current_status"`
	HealthStatus        string   `json:"health_status"`
	CreatedAt           string   `json:"created_at"`
	LastActive          string   `json:"last_active"`
	LastBuildAt         string   `json:"last_build_at"`
	DaysSinceCreated    int      `json:"days_since_created"`
	DaysSinceActive     int      `json:"days_since_active"`
	WorkspaceHours      float64  `json:"workspace_hours"`
	ActiveHours         float64  `json:"active_hours"`
	TotalBuilds         int      `json:"total_builds"`
	LastBuildStatus     string   `json:"last_build_status"`
	ActivityStatus      string   `json:"activity_status"`
	RecentActiveDates   []string `json:"recent_active_dates"`
}

// Aggregate is the complete analytics_aggregate.json payload, the dashboard's
// sole data source. Field names and nesting are load-bearing.
type Aggregate struct {
	Timestamp        string             `json:"timestamp"`
	PlatformMetrics  PlatformMetrics    `json:"platform_metrics"`
	TeamMetrics      []TeamMetrics      `json:"team_metrics"`
	WorkspaceMetrics []WorkspaceMetrics `json:"workspace_metrics"`
	TemplateMetrics  []TemplateMetrics  `json:"template_metrics"`
	DailyEngagement  []DailyEngagement  `json:"daily_engagement"`
}
