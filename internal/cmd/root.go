// Package cmd implements the zanconfig command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

// SetBuildInfo records the version stamped in by the linker.
func SetBuildInfo(v, c string) {
	if v != "" {
		version = v
	}
	if c != "" {
		commit = c
	}
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "zanconfig",
		Short: "Client configuration service for the facility dashboard",
		Long: `zanconfig stores per-client branding, operating flags and notification
thresholds, keeps the legacy tables evolved, and reports how fresh each
client's dashboard feeds are.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringP("config", "c", "", "config file path (default ./zanconfig.yaml or /etc/zanconfig/zanconfig.yaml)")

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newFreshnessCommand(),
		newDefaultsCommand(),
		newConfigCommand(),
		newUserCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
