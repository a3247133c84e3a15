package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websublime/workspace-tools-sub006/scheduler"
)

func TestTaskLevelsWaves(t *testing.T) {
	tasks := []scheduler.Task{
		{Name: "build-a", Command: "true"},
		{Name: "build-b", Command: "true", Dependencies: []string{"build-a"}},
		{Name: "build-c", Command: "true", Dependencies: []string{"build-a"}},
		{Name: "test-all", Command: "true", Dependencies: []string{"build-b", "build-c"}},
	}
	g, err := scheduler.FromTasks(tasks)
	require.NoError(t, err)

	levels, err := g.TaskLevels()
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, []string{"build-a"}, levels[0])
	assert.Equal(t, []string{"build-b", "build-c"}, levels[1])
	assert.Equal(t, []string{"test-all"}, levels[2])
}

func TestFromTasksUnknownDependency(t *testing.T) {
	_, err := scheduler.FromTasks([]scheduler.Task{
		{Name: "a", Dependencies: []string{"ghost"}},
	})
	require.Error(t, err)
	var graphErr *scheduler.GraphError
	assert.ErrorAs(t, err, &graphErr)
}

func TestFromTasksRejectsNegativeTimeout(t *testing.T) {
	_, err := scheduler.FromTasks([]scheduler.Task{
		{Name: "a", Config: scheduler.TaskConfig{Timeout: -time.Second}},
	})
	require.Error(t, err)
	var cfgErr *scheduler.InvalidConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "a", cfgErr.Task)
}

func TestFromTasksCycle(t *testing.T) {
	_, err := scheduler.FromTasks([]scheduler.Task{
		{Name: "a", Dependencies: []string{"b"}},
		{Name: "b", Dependencies: []string{"a"}},
	})
	require.Error(t, err)
}

func TestTaskFilterIncludeExcludeAndClosure(t *testing.T) {
	tasks := []scheduler.Task{
		{Name: "build-a", Package: "a"},
		{Name: "build-b", Package: "b", Dependencies: []string{"build-a"}},
		{Name: "lint-b", Package: "b", Dependencies: []string{"build-a"}},
		{Name: "test-b", Package: "b", Dependencies: []string{"build-b"}},
	}
	g, err := scheduler.FromTasks(tasks)
	require.NoError(t, err)

	filter := scheduler.TaskFilter{Include: []string{"test-*"}, IncludeDependencies: true}
	names := filter.Apply(g)
	assert.Equal(t, []string{"build-a", "build-b", "test-b"}, names)

	packageFilter := scheduler.TaskFilter{Packages: []string{"a"}, IncludeDependents: true}
	names = packageFilter.Apply(g)
	assert.Equal(t, []string{"build-a", "build-b", "lint-b", "test-b"}, names)
}

// fakeExecutor runs no real process; it returns a pre-scripted result per
// task name so parallel ordering/skip semantics can be asserted
// deterministically.
type fakeExecutor struct {
	results map[string]scheduler.Status
}

func (f fakeExecutor) Run(_ context.Context, task scheduler.Task) scheduler.TaskExecution {
	status, ok := f.results[task.Name]
	if !ok {
		status = scheduler.Success
	}
	return scheduler.TaskExecution{Task: task.Name, Status: status, Duration: time.Millisecond}
}

func TestParallelExecutorSkipsDependentsOfFailure(t *testing.T) {
	tasks := []scheduler.Task{
		{Name: "build-a"},
		{Name: "build-b", Dependencies: []string{"build-a"}},
		{Name: "test-b", Dependencies: []string{"build-b"}},
	}
	g, err := scheduler.FromTasks(tasks)
	require.NoError(t, err)

	exec := scheduler.ParallelExecutor{
		MaxParallel: 2,
		Executor:    fakeExecutor{results: map[string]scheduler.Status{"build-b": scheduler.Failed}},
	}
	results, err := exec.Execute(context.Background(), g, g.Names())
	require.NoError(t, err)
	require.Len(t, results, 3)

	byName := map[string]scheduler.TaskExecution{}
	for _, r := range results {
		byName[r.Task] = r
	}
	assert.Equal(t, scheduler.Success, byName["build-a"].Status)
	assert.Equal(t, scheduler.Failed, byName["build-b"].Status)
	assert.Equal(t, scheduler.Skipped, byName["test-b"].Status)
	assert.Equal(t, "build-b", byName["test-b"].SkipReason)
}

func TestParallelExecutorFailFastSkipsRemaining(t *testing.T) {
	tasks := []scheduler.Task{
		{Name: "a"},
		{Name: "b"},
		{Name: "c", Dependencies: []string{"a", "b"}},
	}
	g, err := scheduler.FromTasks(tasks)
	require.NoError(t, err)

	exec := scheduler.ParallelExecutor{
		MaxParallel: 2,
		FailFast:    true,
		Executor:    fakeExecutor{results: map[string]scheduler.Status{"a": scheduler.Failed}},
	}
	results, err := exec.Execute(context.Background(), g, g.Names())
	require.NoError(t, err)

	byName := map[string]scheduler.TaskExecution{}
	for _, r := range results {
		byName[r.Task] = r
	}
	assert.Equal(t, scheduler.Failed, byName["a"].Status)
	assert.Equal(t, scheduler.Skipped, byName["c"].Status)
}

func TestShellExecutorCapturesOutputAndExitCode(t *testing.T) {
	exec := scheduler.ShellExecutor{}
	result := exec.Run(context.Background(), scheduler.Task{
		Name:    "echo",
		Command: "echo hello",
	})
	assert.Equal(t, scheduler.Success, result.Status)
	assert.Contains(t, result.Stdout, "hello")
}

func TestShellExecutorIgnoreError(t *testing.T) {
	exec := scheduler.ShellExecutor{}
	result := exec.Run(context.Background(), scheduler.Task{
		Name:    "fail",
		Command: "exit 3",
		Config:  scheduler.TaskConfig{IgnoreError: true},
	})
	assert.Equal(t, scheduler.Success, result.Status)
}

func TestShellExecutorTimeout(t *testing.T) {
	exec := scheduler.ShellExecutor{}
	result := exec.Run(context.Background(), scheduler.Task{
		Name:    "slow",
		Command: "sleep 2",
		Config:  scheduler.TaskConfig{Timeout: 50 * time.Millisecond},
	})
	assert.Equal(t, scheduler.Timeout, result.Status)
}
