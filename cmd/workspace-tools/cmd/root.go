// Package cmd wires the library packages (workspace, depgraph, ledger,
// planner, scheduler) into an interactive CLI. Grounded on
// santosr2-uptool's cmd/uptool/cmd package (a package-level rootCmd plus
// one file per subcommand, a persistent --verbose flag toggling a shared
// log level) and grovetools-grove's cmd/release.go for the
// dry-run/confirm flag shape of release-style subcommands. It stays thin:
// flag parsing and calls into the library packages, no business logic.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/websublime/workspace-tools-sub006/config"
	"github.com/websublime/workspace-tools-sub006/internal/logging"
)

var (
	rootDir     string
	verboseFlag bool

	log *logging.Logger
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "workspace-tools",
		Short: "Inspect and manage a JSON-manifest monorepo's dependency graph, changes, versions, and tasks",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log = logging.New(cmd.ErrOrStderr(), verboseFlag)

			loaded, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "workspace root directory")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// RootCommandForTest exposes the root command for black-box subcommand
// tests in cmd_test.go.
func RootCommandForTest() *cobra.Command {
	return rootCmd
}
