// Package app wires the flatpak CLI: command dispatch, option parsing and
// the reporting subcommands.
package app

import (
	"github.com/spf13/cobra"
)

// Version is the client version reported by --version and logged with
// every transaction by the transaction engine.
const Version = "1.0.0"

var (
	optUser          bool
	optSystem        bool
	optInstallations []string
	optVerbose       bool

	// RootCmd is the root command for flatpak.
	RootCmd = &cobra.Command{
		Use:   "flatpak",
		Short: "Manage applications and runtimes",
		Long: `flatpak installs, updates and runs sandboxed desktop applications.

This build provides the reporting commands:

  history     Show a log of changes to the installations
  ls-remote   Show available runtimes and applications in a remote

Installation selection:
  Commands work on the default system-wide installation unless told
  otherwise. Use --user for the per-user installation, or
  --installation NAME for a named system installation declared under
  installations.d.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	// Installation selection flags apply to every subcommand.
	RootCmd.PersistentFlags().BoolVar(&optUser, "user", false, "work on the user installation")
	RootCmd.PersistentFlags().BoolVar(&optSystem, "system", false, "work on the system-wide installation (default)")
	RootCmd.PersistentFlags().StringArrayVar(&optInstallations, "installation", nil, "work on a non-default system-wide installation")
	RootCmd.PersistentFlags().BoolVarP(&optVerbose, "verbose", "v", false, "show debug information")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}
