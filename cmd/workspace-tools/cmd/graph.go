package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/websublime/workspace-tools-sub006/depgraph"
	"github.com/websublime/workspace-tools-sub006/workspace"
)

func init() {
	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the internal dependency graph, its sorted build order, and any cycles",
		RunE:  runGraph,
	}
	graphCmd.Flags().String("affected", "", "print packages affected by changes in this package (transitive dependents)")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	ws, err := workspace.Discover(rootDir, cfg.Discovery)
	if err != nil {
		return err
	}
	gr, err := depgraph.Build(ws)
	if err != nil {
		return err
	}

	if affected, _ := cmd.Flags().GetString("affected"); affected != "" {
		names := gr.AffectedPackages([]string{affected})
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), "build order (leaves first):")
	for _, name := range gr.SortedPackages() {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
	}

	if sccs := gr.SCCs(); len(sccs) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "\ncycles:")
		for _, scc := range sccs {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", strings.Join(scc, " -> "))
		}
	}

	report := gr.Validate()
	if len(report.Issues) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "\nissues:")
		for _, issue := range report.Issues {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", issue.String())
		}
	}
	return nil
}
