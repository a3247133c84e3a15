package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/websublime/workspace-tools-sub006/depgraph"
	"github.com/websublime/workspace-tools-sub006/ledger"
	"github.com/websublime/workspace-tools-sub006/planner"
	"github.com/websublime/workspace-tools-sub006/semver"
	"github.com/websublime/workspace-tools-sub006/vcsgit"
	"github.com/websublime/workspace-tools-sub006/workspace"
)

func init() {
	versionCmd := &cobra.Command{Use: "version", Short: "Preview and apply version bumps"}

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the version bumps a strategy would produce, without writing anything",
		RunE:  runVersionPreview,
	}
	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a strategy's version bumps to every affected manifest",
		RunE:  runVersionApply,
	}
	for _, c := range []*cobra.Command{previewCmd, applyCmd} {
		c.Flags().String("strategy", "", "synchronized, independent, or conventional (defaults to the configured strategy; manual is not accepted here)")
		c.Flags().String("version", "", "target version for the synchronized strategy")
		c.Flags().String("from-ref", "", "starting VCS ref for the conventional strategy")
		c.Flags().Bool("major-if-breaking", true, "breaking changes bump major rather than minor")
		c.Flags().Bool("minor-if-feature", true, "feature changes bump minor rather than patch")
	}
	applyCmd.Flags().Bool("dry-run", false, "compute and print the write set without touching any file")
	applyCmd.Flags().String("env", "", "mark applied changes released for this environment (when empty, no changes are marked released)")

	versionCmd.AddCommand(previewCmd, applyCmd)
	rootCmd.AddCommand(versionCmd)
}

func buildPlanner(needsVCS bool) (*planner.Planner, *workspace.Workspace, error) {
	ws, err := workspace.Discover(rootDir, cfg.Discovery)
	if err != nil {
		return nil, nil, err
	}
	gr, err := depgraph.Build(ws)
	if err != nil {
		return nil, nil, err
	}
	store := ledger.NewFileStore(changeStoreDir())
	detector := ledger.NewScopeDetector(ws, nil)

	var adapter *vcsgit.Adapter
	if needsVCS {
		adapter, err = vcsgit.Open(rootDir)
		if err != nil {
			return nil, nil, err
		}
	}
	if adapter == nil {
		return planner.New(ws, gr, store, nil, detector), ws, nil
	}
	return planner.New(ws, gr, store, adapter, detector), ws, nil
}

func strategyFromFlags(cmd *cobra.Command) (planner.Strategy, bool, error) {
	name, _ := cmd.Flags().GetString("strategy")
	if name == "" {
		name = cfg.DefaultStrategy
	}
	majorIfBreaking, _ := cmd.Flags().GetBool("major-if-breaking")
	minorIfFeature, _ := cmd.Flags().GetBool("minor-if-feature")

	switch name {
	case "synchronized":
		raw, _ := cmd.Flags().GetString("version")
		if raw == "" {
			raw = cfg.SynchronizedVersion
		}
		v, err := semver.Parse(raw)
		if err != nil {
			return planner.Strategy{}, false, fmt.Errorf("version: --version is required for the synchronized strategy: %w", err)
		}
		return planner.NewSynchronizedStrategy(v, false), false, nil
	case "independent":
		return planner.NewIndependentStrategy(majorIfBreaking, minorIfFeature), false, nil
	case "conventional":
		fromRef, _ := cmd.Flags().GetString("from-ref")
		return planner.NewConventionalCommitsStrategy(fromRef, majorIfBreaking, minorIfFeature), true, nil
	default:
		return planner.Strategy{}, false, fmt.Errorf("version: unknown strategy %q", name)
	}
}

func runVersionPreview(cmd *cobra.Command, args []string) error {
	strategy, needsVCS, err := strategyFromFlags(cmd)
	if err != nil {
		return err
	}
	p, _, err := buildPlanner(needsVCS)
	if err != nil {
		return err
	}

	preview, err := p.PreviewBumps(context.Background(), strategy)
	if err != nil {
		return err
	}
	for _, s := range preview.Changes {
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s -> %s\n", s.Package, s.Current.String(), s.Suggested.String())
	}
	if preview.CycleDetected {
		fmt.Fprintln(cmd.OutOrStdout(), "\ncycles harmonized:")
		for _, group := range preview.CycleGroups {
			fmt.Fprintf(cmd.OutOrStdout(), "  %v\n", group)
		}
	}
	return nil
}

func runVersionApply(cmd *cobra.Command, args []string) error {
	strategy, needsVCS, err := strategyFromFlags(cmd)
	if err != nil {
		return err
	}
	p, _, err := buildPlanner(needsVCS)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	result, err := p.ApplyBumps(context.Background(), strategy, dryRun)
	if err != nil {
		return err
	}
	for _, c := range result.Changes {
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s -> %s\n", c.Package, c.Previous.String(), c.New.String())
	}
	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "(dry run: no files were written)")
	}

	env, _ := cmd.Flags().GetString("env")
	if env != "" {
		store := ledger.NewFileStore(changeStoreDir())
		released, err := p.MarkChangesAsReleasedForEnvironment(context.Background(), store, result, env, dryRun)
		if err != nil {
			return err
		}
		for _, c := range released {
			fmt.Fprintf(cmd.OutOrStdout(), "released %s %s for %s\n", c.Package, c.ReleaseVersion, env)
		}
	}
	return nil
}
