package main

import (
	"os"

	"github.com/spf13/cobra"

	"coderops/internal/commands"
	"coderops/internal/output"
)

var jsonFlag bool

var rootCmd = &cobra.Command{
	Use:   "coderops",
	Short: "Operations tooling for the bootcamp Coder platform",
	Long:  "Collect usage snapshots, publish analytics aggregates and administer teams, participants and API keys",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Output in JSON format")

	rootCmd.AddCommand(commands.CollectCmd)
	rootCmd.AddCommand(commands.AggregateCmd)
	rootCmd.AddCommand(commands.TeamsCmd)
	rootCmd.AddCommand(commands.ParticipantsCmd)
	rootCmd.AddCommand(commands.WorkspacesCmd)
	rootCmd.AddCommand(commands.KeysCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		output.JSONMode = jsonFlag
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
