package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "baram",
		Short: "baram - SageMaker Studio workspace manager",
		Long: `baram manages SageMaker Studio workspaces: domains, user profiles,
apps and custom images, plus the EC2 hygiene around them.

Features:
  - Ordered profile teardown (apps first, profile last)
  - Bulk delete-and-recreate of profiles preserving their settings
  - Bounded convergence polling: no operation waits forever
  - Custom Studio image lifecycle
  - Key pair hygiene and IMDSv2 enforcement
  - SQLite audit log of every teardown and replace run`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default baram.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newProfilesCommand())
	rootCmd.AddCommand(newDomainsCommand())
	rootCmd.AddCommand(newAppsCommand())
	rootCmd.AddCommand(newImagesCommand())
	rootCmd.AddCommand(newKeypairsCommand())
	rootCmd.AddCommand(newHardenCommand())
	rootCmd.AddCommand(newRunsCommand())

	return rootCmd
}
