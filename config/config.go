// Package config loads the configuration surface of spec.md §6 (discovery,
// validation, changelog, parallel execution, filtering, bump strategy
// selection) from a workspace-tools.yaml file plus environment overrides,
// assembling the plain structs each component package already owns. This
// is the only package that imports viper directly, grounded on
// untoldecay-BeadsLog's internal/config.Initialize, which locates a single
// config file by walking up from the working directory and layers
// environment variables on top via SetEnvPrefix/AutomaticEnv.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/websublime/workspace-tools-sub006/manifest"
	"github.com/websublime/workspace-tools-sub006/planner"
	"github.com/websublime/workspace-tools-sub006/scheduler"
	"github.com/websublime/workspace-tools-sub006/workspace"
)

// taskConfigDoc mirrors scheduler.Task's shape for viper's map-based
// decoding; scheduler.TaskConfig.Timeout is a time.Duration, which
// viper.UnmarshalKey parses from a "30s"-style string via its default
// mapstructure decode hooks.
type taskConfigDoc struct {
	Name         string            `mapstructure:"name"`
	Command      string            `mapstructure:"command"`
	Package      string            `mapstructure:"package"`
	Dependencies []string          `mapstructure:"dependencies"`
	Cwd          string            `mapstructure:"cwd"`
	Env          map[string]string `mapstructure:"env"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	IgnoreError  bool              `mapstructure:"ignore-error"`
	LiveOutput   bool              `mapstructure:"live-output"`
}

// EnvPrefix is the environment variable prefix bound by AutomaticEnv, e.g.
// WORKSPACETOOLS_PARALLEL_MAX_PARALLEL.
const EnvPrefix = "WORKSPACETOOLS"

// ParallelConfig configures ParallelExecutor construction from the loaded
// file/environment.
type ParallelConfig struct {
	MaxParallel int
	FailFast    bool
}

// FilterConfig configures scheduler.TaskFilter construction from the
// loaded file/environment.
type FilterConfig struct {
	Include             []string
	Exclude             []string
	IncludeDependencies bool
	IncludeDependents   bool
}

// Config is the fully assembled configuration surface.
type Config struct {
	Discovery  workspace.DiscoveryConfig
	Validation workspace.ValidationOptions
	Changelog  planner.ChangelogConfig
	Parallel   ParallelConfig
	Filter     FilterConfig

	// DefaultStrategy names the bump strategy used when none is given on
	// the command line (spec.md §4.7). The CLI accepts "synchronized",
	// "independent", or "conventional"; Load does not validate the value.
	DefaultStrategy string
	// SynchronizedVersion is the target version for the synchronized
	// strategy, when DefaultStrategy == "synchronized".
	SynchronizedVersion string

	// Tasks are the named tasks declared under "tasks" in the config
	// file, consumed by the "run" subcommand's scheduler.TaskGraph.
	Tasks []scheduler.Task

	v *viper.Viper
}

// Load locates workspace-tools.{yaml,toml,json} starting at startDir and
// walking up to the filesystem root, falling back to built-in defaults if
// none is found, then layers WORKSPACETOOLS_-prefixed environment
// variables on top.
func Load(startDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("workspace-tools")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path := findConfigFile(startDir); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	cfg := fromViper(v)
	tasks, err := loadTasks(v)
	if err != nil {
		return nil, err
	}
	cfg.Tasks = tasks
	return cfg, nil
}

func loadTasks(v *viper.Viper) ([]scheduler.Task, error) {
	var docs []taskConfigDoc
	if err := v.UnmarshalKey("tasks", &docs); err != nil {
		return nil, fmt.Errorf("config: decoding tasks: %w", err)
	}
	tasks := make([]scheduler.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, scheduler.Task{
			Name:         d.Name,
			Command:      d.Command,
			Package:      d.Package,
			Dependencies: d.Dependencies,
			Config: scheduler.TaskConfig{
				Cwd:         d.Cwd,
				Env:         d.Env,
				Timeout:     d.Timeout,
				IgnoreError: d.IgnoreError,
				LiveOutput:  d.LiveOutput,
			},
		})
	}
	return tasks, nil
}

func findConfigFile(startDir string) string {
	names := []string{"workspace-tools.yaml", "workspace-tools.yml", "workspace-tools.toml", "workspace-tools.json"}
	for dir := startDir; ; {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("discovery.include", []string{"**/package.json"})
	v.SetDefault("discovery.exclude", []string{"**/node_modules/**", "**/vendor/**", "**/dist/**", "**/build/**"})
	v.SetDefault("discovery.detect-package-manager", true)
	v.SetDefault("discovery.dependency-filter.production", true)
	v.SetDefault("discovery.dependency-filter.dev", false)
	v.SetDefault("discovery.dependency-filter.optional", true)
	v.SetDefault("discovery.dependency-filter.peer", false)
	v.SetDefault("discovery.root-markers", []string{"package.json", "pnpm-workspace.yaml", "lerna.json"})

	v.SetDefault("validation.treat-unresolved-as-external", true)

	v.SetDefault("changelog.header-template", "## {package} {version} - {date}\n\n")
	v.SetDefault("changelog.entry-template", "- {description} ({type})\n")
	v.SetDefault("changelog.update-existing", true)
	v.SetDefault("changelog.file-name", "CHANGELOG.md")

	v.SetDefault("parallel.max-parallel", 4)
	v.SetDefault("parallel.fail-fast", false)

	v.SetDefault("filter.include-dependencies", false)
	v.SetDefault("filter.include-dependents", false)

	v.SetDefault("strategy.default", "independent")
	v.SetDefault("strategy.synchronized-version", "")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Discovery: workspace.DiscoveryConfig{
			IncludePatterns: v.GetStringSlice("discovery.include"),
			ExcludePatterns: v.GetStringSlice("discovery.exclude"),
			DependencyFilter: manifest.DependencyFilter{
				IncludeProduction: v.GetBool("discovery.dependency-filter.production"),
				IncludeDev:        v.GetBool("discovery.dependency-filter.dev"),
				IncludeOptional:   v.GetBool("discovery.dependency-filter.optional"),
				IncludePeer:       v.GetBool("discovery.dependency-filter.peer"),
			},
			DetectPackageManager: v.GetBool("discovery.detect-package-manager"),
			RootMarkers:          v.GetStringSlice("discovery.root-markers"),
		},
		Validation: workspace.ValidationOptions{
			TreatUnresolvedAsExternal: v.GetBool("validation.treat-unresolved-as-external"),
			InternalDependencies:      v.GetStringSlice("validation.internal-dependencies"),
		},
		Changelog: planner.ChangelogConfig{
			HeaderTemplate: v.GetString("changelog.header-template"),
			EntryTemplate:  v.GetString("changelog.entry-template"),
			UpdateExisting: v.GetBool("changelog.update-existing"),
			FileName:       v.GetString("changelog.file-name"),
		},
		Parallel: ParallelConfig{
			MaxParallel: v.GetInt("parallel.max-parallel"),
			FailFast:    v.GetBool("parallel.fail-fast"),
		},
		Filter: FilterConfig{
			Include:             v.GetStringSlice("filter.include"),
			Exclude:             v.GetStringSlice("filter.exclude"),
			IncludeDependencies: v.GetBool("filter.include-dependencies"),
			IncludeDependents:   v.GetBool("filter.include-dependents"),
		},
		DefaultStrategy:     v.GetString("strategy.default"),
		SynchronizedVersion: v.GetString("strategy.synchronized-version"),
		v:                   v,
	}
}

// ParallelExecutor builds a scheduler.ParallelExecutor from the loaded
// Parallel settings.
func (c *Config) ParallelExecutor(exec scheduler.ProcessExecutor) scheduler.ParallelExecutor {
	return scheduler.ParallelExecutor{
		MaxParallel: c.Parallel.MaxParallel,
		FailFast:    c.Parallel.FailFast,
		Executor:    exec,
	}
}

// TaskFilter builds a scheduler.TaskFilter from the loaded Filter settings.
func (c *Config) TaskFilter() scheduler.TaskFilter {
	return scheduler.TaskFilter{
		Include:             c.Filter.Include,
		Exclude:             c.Filter.Exclude,
		IncludeDependencies: c.Filter.IncludeDependencies,
		IncludeDependents:   c.Filter.IncludeDependents,
	}
}

// ChangelogTimestamp is a small helper so callers needn't import time
// directly just to call planner.GenerateChangelog with "now".
func ChangelogTimestamp() time.Time { return time.Now() }

// EnvironmentNames returns the environment scope names declared under
// "environments" in the config file (spec.md §4.6 "Environments"), e.g.
// ["staging", "production"].
func (c *Config) EnvironmentNames() []string {
	return c.v.GetStringSlice("environments")
}
