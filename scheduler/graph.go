package scheduler

import "sort"

// TaskGraph is the DAG of Task names and their declared dependencies
// (spec.md §4.8 "Task graph").
type TaskGraph struct {
	tasks map[string]Task
	order []string // insertion order, for stable diagnostics
}

// FromTasks builds a TaskGraph from tasks. A dependency naming a task not
// present in tasks, or a cycle among the declared dependencies, is a
// GraphError.
func FromTasks(tasks []Task) (*TaskGraph, error) {
	g := &TaskGraph{tasks: make(map[string]Task, len(tasks))}
	for _, t := range tasks {
		if _, exists := g.tasks[t.Name]; exists {
			return nil, &GraphError{Reason: "duplicate task name " + t.Name}
		}
		if t.Config.Timeout < 0 {
			return nil, &InvalidConfigurationError{Task: t.Name, Reason: "timeout must not be negative"}
		}
		g.tasks[t.Name] = t
		g.order = append(g.order, t.Name)
	}

	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, ok := g.tasks[dep]; !ok {
				return nil, &GraphError{Reason: "task " + t.Name + " depends on unknown task " + dep}
			}
		}
	}

	if _, err := g.TaskLevels(); err != nil {
		return nil, err
	}

	return g, nil
}

// Task returns the named task and whether it exists.
func (g *TaskGraph) Task(name string) (Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// Names returns every task name in insertion order.
func (g *TaskGraph) Names() []string {
	return append([]string(nil), g.order...)
}

// Dependents returns the names of tasks that directly depend on name.
func (g *TaskGraph) Dependents(name string) []string {
	var out []string
	for _, t := range g.tasks {
		for _, dep := range t.Dependencies {
			if dep == name {
				out = append(out, t.Name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// TaskLevels returns Kahn-style waves per spec.md §4.8: wave 0 is every
// task with no in-graph dependencies; each subsequent wave is tasks whose
// dependencies are all in earlier waves. Within a wave, tasks are ordered
// by name. A cycle among the declared dependencies surfaces as a
// GraphError.
func (g *TaskGraph) TaskLevels() ([][]string, error) {
	remaining := make(map[string]int, len(g.tasks))
	for name, t := range g.tasks {
		remaining[name] = len(t.Dependencies)
	}

	var levels [][]string
	placed := 0
	for len(remaining) > 0 {
		var wave []string
		for name, count := range remaining {
			if count == 0 {
				wave = append(wave, name)
			}
		}
		if len(wave) == 0 {
			return nil, &GraphError{Reason: "cycle detected among task dependencies"}
		}
		sort.Strings(wave)
		levels = append(levels, wave)
		placed += len(wave)

		for _, name := range wave {
			delete(remaining, name)
		}
		for name, count := range remaining {
			reduced := count
			for _, dep := range g.tasks[name].Dependencies {
				if contains(wave, dep) {
					reduced--
				}
			}
			remaining[name] = reduced
		}
	}

	_ = placed
	return levels, nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
