package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/websublime/workspace-tools-sub006/ledger"
	"github.com/websublime/workspace-tools-sub006/vcsgit"
	"github.com/websublime/workspace-tools-sub006/workspace"
)

func init() {
	changesCmd := &cobra.Command{Use: "changes", Short: "Record and inspect the change ledger"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List unreleased changes",
		RunE:  runChangesList,
	}
	listCmd.Flags().String("env", "", "restrict to changes applying to this environment")

	addCmd := &cobra.Command{
		Use:   "add <package> <type> <description>",
		Short: "Record a manual change (type e.g. feature, fix, docs; --breaking marks it breaking)",
		Args:  cobra.ExactArgs(3),
		RunE:  runChangesAdd,
	}
	addCmd.Flags().Bool("breaking", false, "mark this change as breaking")

	detectCmd := &cobra.Command{
		Use:   "detect <from-ref> <to-ref>",
		Short: "Detect changes between two VCS refs via conventional-commit parsing",
		Args:  cobra.ExactArgs(2),
		RunE:  runChangesDetect,
	}

	changesCmd.AddCommand(listCmd, addCmd, detectCmd)
	rootCmd.AddCommand(changesCmd)
}

func changeStoreDir() string {
	return filepath.Join(rootDir, ".workspace-tools", "changes")
}

func runChangesList(cmd *cobra.Command, args []string) error {
	env, _ := cmd.Flags().GetString("env")
	store := ledger.NewFileStore(changeStoreDir())
	changes, err := store.UnreleasedChanges(context.Background(), env)
	if err != nil {
		return err
	}
	for _, c := range changes {
		breaking := ""
		if c.Breaking {
			breaking = " [breaking]"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %-12s %s%s\n", c.ID, c.Package, c.ChangeType, c.Description, breaking)
	}
	return nil
}

func runChangesAdd(cmd *cobra.Command, args []string) error {
	pkg, typeToken, description := args[0], args[1], args[2]
	breaking, _ := cmd.Flags().GetBool("breaking")

	change := ledger.NewManualChange(pkg, changeTypeFromToken(typeToken), description, breaking)
	cs := ledger.NewChangeset(fmt.Sprintf("manual: %s", pkg), []ledger.Change{change})

	store := ledger.NewFileStore(changeStoreDir())
	if err := store.Store(context.Background(), cs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "recorded change %s for %s\n", change.ID, pkg)
	return nil
}

func changeTypeFromToken(token string) ledger.ChangeType {
	switch token {
	case "feature", "feat":
		return ledger.Feature
	case "fix":
		return ledger.Fix
	case "docs":
		return ledger.Documentation
	case "perf":
		return ledger.Performance
	case "refactor":
		return ledger.Refactor
	case "test":
		return ledger.Test
	case "chore":
		return ledger.Chore
	case "build":
		return ledger.Build
	case "ci":
		return ledger.CI
	case "revert":
		return ledger.Revert
	case "style":
		return ledger.Style
	default:
		return ledger.Custom
	}
}

func runChangesDetect(cmd *cobra.Command, args []string) error {
	from, to := args[0], args[1]

	ws, err := workspace.Discover(rootDir, cfg.Discovery)
	if err != nil {
		return err
	}
	adapter, err := vcsgit.Open(rootDir)
	if err != nil {
		return err
	}
	detector := ledger.NewScopeDetector(ws, nil)

	changes, err := ledger.DetectChangesBetween(context.Background(), adapter, detector, from, to)
	if err != nil {
		return err
	}
	for _, c := range changes {
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-12s %s\n", c.Package, c.ChangeType, c.Description)
	}
	return nil
}
