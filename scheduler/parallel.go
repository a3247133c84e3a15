package scheduler

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ParallelExecutor runs a TaskGraph's selected tasks wave by wave, bounding
// concurrency to MaxParallel (spec.md §4.8 "Parallel execution"). Grounded
// on distr1-distri's batch.go, which drives an errgroup-bounded worker pool
// over a package graph and feeds completed dependents back onto a work
// channel as their dependencies finish; here the wave partitioning from
// TaskGraph.TaskLevels replaces that feedback channel with an explicit
// barrier between waves, since a task must never start before every
// dependency in its wave set has reached a terminal state.
type ParallelExecutor struct {
	MaxParallel  int
	FailFast     bool
	ShowProgress bool
	Executor     ProcessExecutor
	OnProgress   func(TaskExecution)
}

// Execute runs every name in names (assumed to be a subset of g's task
// names, e.g. from TaskFilter.Apply) respecting dependency order, and
// returns one TaskExecution per name.
func (pe ParallelExecutor) Execute(ctx context.Context, g *TaskGraph, names []string) ([]TaskExecution, error) {
	levels, err := g.TaskLevels()
	if err != nil {
		return nil, err
	}
	selected := make(map[string]bool, len(names))
	for _, n := range names {
		selected[n] = true
	}

	maxParallel := pe.MaxParallel
	if maxParallel <= 0 {
		maxParallel = 1
	}
	sem := semaphore.NewWeighted(int64(maxParallel))

	var mu sync.Mutex
	results := make(map[string]TaskExecution, len(names))
	failed := false
	failedTask := ""

	for _, wave := range levels {
		waveNames := filterSelected(wave, selected)
		if len(waveNames) == 0 {
			continue
		}

		group, groupCtx := errgroup.WithContext(ctx)
		for _, name := range waveNames {
			name := name
			group.Go(func() error {
				if err := sem.Acquire(groupCtx, 1); err != nil {
					mu.Lock()
					results[name] = TaskExecution{Task: name, Status: Cancelled}
					mu.Unlock()
					return nil
				}
				defer sem.Release(1)

				t, _ := g.Task(name)

				mu.Lock()
				mustFailFast := pe.FailFast && failed
				failFastReason := failedTask
				skipReason := firstFailedDependency(t, results)
				mu.Unlock()

				var exec TaskExecution
				switch {
				case skipReason != "":
					exec = TaskExecution{Task: name, Status: Skipped, SkipReason: skipReason}
				case mustFailFast:
					exec = TaskExecution{Task: name, Status: Skipped, SkipReason: failFastReason}
				default:
					exec = pe.Executor.Run(groupCtx, t)
				}

				mu.Lock()
				results[name] = exec
				if exec.Status == Failed || exec.Status == Timeout {
					if !failed {
						failedTask = name
					}
					failed = true
				}
				mu.Unlock()

				if pe.OnProgress != nil {
					pe.OnProgress(exec)
				}
				return nil
			})
		}
		_ = group.Wait()
	}

	out := make([]TaskExecution, 0, len(names))
	for _, name := range names {
		if exec, ok := results[name]; ok {
			out = append(out, exec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Task < out[j].Task })
	return out, nil
}

func filterSelected(wave []string, selected map[string]bool) []string {
	var out []string
	for _, name := range wave {
		if selected[name] {
			out = append(out, name)
		}
	}
	return out
}

// firstFailedDependency returns the name of the first of t's dependencies
// whose result is not Success (spec.md §4.8 DependencyFailed), or "" if
// every dependency succeeded (or t has no dependency results yet, e.g.
// they were outside the selection and never ran).
func firstFailedDependency(t Task, results map[string]TaskExecution) string {
	for _, dep := range t.Dependencies {
		exec, ok := results[dep]
		if !ok {
			continue
		}
		if exec.Status != Success {
			return dep
		}
	}
	return ""
}
