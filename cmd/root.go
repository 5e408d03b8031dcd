package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reporting",
	Short: "Cybersecurity report workflow API server",
	Long: `Reporting is a REST API server for a role-gated editorial workflow
for publishing cybersecurity articles, with an aggregated RSS news feed.
Editors submit reports, administrators evaluate them and executives give
final approval.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// GetRootCmd returns the root command, for tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}
