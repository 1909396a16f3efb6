// Package commands implements the wabot CLI commands.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "wabot",
		Short:   "WhatsApp automation bot",
		Long:    `wabot maintains a persistent WhatsApp session and dispatches chat commands: media download, group administration, and AI queries.`,
		Version: version,
	}

	rootCmd.PersistentFlags().String("config", "", "path to config file (YAML)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	rootCmd.AddCommand(
		newServeCmd(),
		newHealthCmd(),
		newSetupCmd(),
	)

	return rootCmd
}
