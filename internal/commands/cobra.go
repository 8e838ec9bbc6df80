package commands

import (
	"github.com/spf13/cobra"
)

// CollectCmd represents the collect command
var CollectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect a platform snapshot",
	Long:  "Fetch workspaces, templates and usage from Coder, roll the accumulators forward and upload a snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		local, _ := cmd.Flags().GetBool("local")
		RunCollect(local)
	},
}

// AggregateCmd represents the aggregate command
var AggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Compute and publish the analytics aggregate",
	Long:  "Replay all stored snapshots into the workspace registry and upload the dashboard aggregate",
	Run: func(cmd *cobra.Command, args []string) {
		RunAggregate()
	},
}

// TeamsCmd represents the teams parent command
var TeamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Manage team documents",
}

// TeamsSetupCmd represents the teams setup command
var TeamsSetupCmd = &cobra.Command{
	Use:   "setup <roster.csv>",
	Short: "Create teams from a CSV roster",
	Long:  "Read team names from a CSV file and create or update the matching Firestore documents",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		RunTeamsSetup(args[0], dryRun)
	},
}

// ParticipantsCmd represents the participants parent command
var ParticipantsCmd = &cobra.Command{
	Use:   "participants",
	Short: "Manage participant documents",
}

// ParticipantsSetupCmd represents the participants setup command
var ParticipantsSetupCmd = &cobra.Command{
	Use:   "setup <roster.csv>",
	Short: "Create participants and teams from a CSV roster",
	Long:  "Read participants from a CSV file and create or update their Firestore documents and team memberships",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		RunParticipantsSetup(args[0], dryRun)
	},
}

// ParticipantsDeleteCmd represents the participants delete command
var ParticipantsDeleteCmd = &cobra.Command{
	Use:   "delete <roster.csv>",
	Short: "Delete participants listed in a CSV roster",
	Long:  "Remove participant documents, pull the handles out of their teams and delete teams left empty",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		RunParticipantsDelete(args[0], dryRun)
	},
}

// ParticipantsUpdateCmd represents the participants update command
var ParticipantsUpdateCmd = &cobra.Command{
	Use:   "update <old-handle> <new-handle>",
	Short: "Rename a participant",
	Long:  "Move a participant document to a new handle and fix the team's member list",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		RunParticipantsUpdate(args[0], args[1])
	},
}

// ParticipantsVerifyCmd represents the participants verify command
var ParticipantsVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check directory consistency",
	Long:  "Cross-check teams, participants and global keys; exits non-zero when errors are found",
	Run: func(cmd *cobra.Command, args []string) {
		RunParticipantsVerify()
	},
}

// WorkspacesCmd represents the workspaces parent command
var WorkspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "Manage Coder workspaces",
}

// WorkspacesDeleteCmd represents the workspaces delete command
var WorkspacesDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Bulk-delete workspaces created before a date",
	Run: func(cmd *cobra.Command, args []string) {
		before, _ := cmd.Flags().GetString("before")
		orphan, _ := cmd.Flags().GetBool("orphan")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		yes, _ := cmd.Flags().GetBool("yes")
		RunWorkspacesDelete(before, orphan, dryRun, yes)
	},
}

// KeysCmd represents the keys parent command
var KeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage team API keys",
}

// KeysProvisionCmd represents the keys provision command
var KeysProvisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create Gemini API keys for all teams",
	Long:  "Create one restricted Gemini API key per team, validate it and store it on the team document",
	Run: func(cmd *cobra.Command, args []string) {
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		RunKeysProvision(overwrite, dryRun)
	},
}

// KeysGlobalSetupCmd represents the keys global-setup command
var KeysGlobalSetupCmd = &cobra.Command{
	Use:   "global-setup",
	Short: "Store the bootcamp's shared keys",
	Long:  "Read shared infrastructure keys from an env file and write them to the global keys document",
	Run: func(cmd *cobra.Command, args []string) {
		envFile, _ := cmd.Flags().GetString("env-file")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		showExisting, _ := cmd.Flags().GetBool("show-existing")
		RunKeysGlobalSetup(envFile, dryRun, showExisting)
	},
}

// KeysWebSearchCmd represents the keys web-search command
var KeysWebSearchCmd = &cobra.Command{
	Use:   "web-search <keys.csv>",
	Short: "Upload per-team web search API keys",
	Long:  "Read web search API keys from a CSV file and store each one on the matching team document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		RunKeysWebSearch(args[0], dryRun)
	},
}

// ConfigCmd represents the config parent command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tool configuration",
}

// ConfigInitCmd represents the config init command
var ConfigInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the resolved configuration to disk",
	Run: func(cmd *cobra.Command, args []string) {
		RunConfigInit()
	},
}

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		RunVersion()
	},
}

func init() {
	CollectCmd.Flags().Bool("local", false, "Also write the snapshot to coder_snapshot.json")

	TeamsSetupCmd.Flags().Bool("dry-run", false, "Validate and show what would be done without writing")
	TeamsCmd.AddCommand(TeamsSetupCmd)

	ParticipantsSetupCmd.Flags().Bool("dry-run", false, "Validate and show what would be done without writing")
	ParticipantsDeleteCmd.Flags().Bool("dry-run", false, "Show what would be deleted without deleting")
	ParticipantsCmd.AddCommand(ParticipantsSetupCmd)
	ParticipantsCmd.AddCommand(ParticipantsDeleteCmd)
	ParticipantsCmd.AddCommand(ParticipantsUpdateCmd)
	ParticipantsCmd.AddCommand(ParticipantsVerifyCmd)

	WorkspacesDeleteCmd.Flags().String("before", "", "Delete workspaces created before this date (YYYY-MM-DD)")
	WorkspacesDeleteCmd.Flags().Bool("orphan", false, "Delete without destroying cloud resources")
	WorkspacesDeleteCmd.Flags().Bool("dry-run", false, "Show what would be deleted without deleting")
	WorkspacesDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	WorkspacesDeleteCmd.MarkFlagRequired("before")
	WorkspacesCmd.AddCommand(WorkspacesDeleteCmd)

	KeysProvisionCmd.Flags().Bool("overwrite", false, "Delete and recreate keys that already exist")
	KeysProvisionCmd.Flags().Bool("dry-run", false, "Show what would be done without creating keys")
	KeysCmd.AddCommand(KeysProvisionCmd)

	KeysGlobalSetupCmd.Flags().String("env-file", ".env", "Env file to read shared keys from")
	KeysGlobalSetupCmd.Flags().Bool("dry-run", false, "Validate and show the keys without writing")
	KeysGlobalSetupCmd.Flags().Bool("show-existing", false, "Show the currently stored keys and exit")
	KeysCmd.AddCommand(KeysGlobalSetupCmd)

	KeysWebSearchCmd.Flags().Bool("dry-run", false, "Show what would be uploaded without writing")
	KeysCmd.AddCommand(KeysWebSearchCmd)

	ConfigCmd.AddCommand(ConfigInitCmd)
}
