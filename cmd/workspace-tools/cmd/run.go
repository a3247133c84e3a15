package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/websublime/workspace-tools-sub006/depgraph"
	"github.com/websublime/workspace-tools-sub006/scheduler"
	"github.com/websublime/workspace-tools-sub006/workspace"
)

func init() {
	runCmd := &cobra.Command{
		Use:   "run [task-glob...]",
		Short: "Run the configured tasks, respecting their dependency graph",
		RunE:  runRun,
	}
	runCmd.Flags().StringSlice("exclude", nil, "glob patterns excluding matching tasks")
	runCmd.Flags().StringSlice("packages", nil, "restrict to tasks scoped to these packages")
	runCmd.Flags().Bool("include-dependencies", false, "also run the transitive dependencies of matched tasks")
	runCmd.Flags().Bool("include-dependents", false, "also run the transitive dependents of matched tasks")
	runCmd.Flags().String("since", "", "restrict --packages to those affected by changes in this package")
	runCmd.Flags().Int("max-parallel", 0, "bound concurrent task execution (0 uses the configured default)")
	runCmd.Flags().Bool("fail-fast", false, "stop launching new tasks after the first failure")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	graph, err := scheduler.FromTasks(cfg.Tasks)
	if err != nil {
		return err
	}

	filter := cfg.TaskFilter()
	filter.Include = args
	if exclude, _ := cmd.Flags().GetStringSlice("exclude"); len(exclude) > 0 {
		filter.Exclude = exclude
	}
	if packages, _ := cmd.Flags().GetStringSlice("packages"); len(packages) > 0 {
		filter.Packages = packages
	}
	if includeDeps, _ := cmd.Flags().GetBool("include-dependencies"); includeDeps {
		filter.IncludeDependencies = true
	}
	if includeDependents, _ := cmd.Flags().GetBool("include-dependents"); includeDependents {
		filter.IncludeDependents = true
	}

	if since, _ := cmd.Flags().GetString("since"); since != "" {
		affected, err := affectedPackages(since)
		if err != nil {
			return err
		}
		filter.Packages = append(filter.Packages, affected...)
	}

	names := filter.Apply(graph)
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no tasks matched")
		return nil
	}

	maxParallel, _ := cmd.Flags().GetInt("max-parallel")
	if maxParallel <= 0 {
		maxParallel = cfg.Parallel.MaxParallel
	}
	failFast, _ := cmd.Flags().GetBool("fail-fast")
	if !cmd.Flags().Changed("fail-fast") {
		failFast = cfg.Parallel.FailFast
	}

	executor := scheduler.ParallelExecutor{
		MaxParallel: maxParallel,
		FailFast:    failFast,
		Executor:    scheduler.ShellExecutor{},
		OnProgress: func(exec scheduler.TaskExecution) {
			log.WithTask(exec.Task).Infof("%s (%s)", exec.Status, exec.Duration)
		},
	}

	results, err := executor.Execute(context.Background(), graph, names)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", r.Task, r.Status)
		if r.Status == scheduler.Failed || r.Status == scheduler.Timeout {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("run: %d task(s) failed", failed)
	}
	return nil
}

func affectedPackages(since string) ([]string, error) {
	ws, err := workspace.Discover(rootDir, cfg.Discovery)
	if err != nil {
		return nil, err
	}
	gr, err := depgraph.Build(ws)
	if err != nil {
		return nil, err
	}
	return gr.AffectedPackages([]string{since}), nil
}
