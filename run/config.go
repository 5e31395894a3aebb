package run

import (
	"github.com/rs/zerolog"

	"github.com/jonwraymond/debuggym/metrics"
)

// Settings is the shape of one agent section of a task configuration,
// decoded with config.Section.Decode. It names the task, the terminal
// commands run in, the tools on offer, and the artifacts to keep.
type Settings struct {
	// Task

	Env      EnvSettings      `mapstructure:"env"`
	Terminal TerminalSettings `mapstructure:"terminal"`

	// Execution

	// Tools lists the built-in tools to register, by name.
	Tools []string `mapstructure:"tools"`

	// Script is the tool sequence the episode executes in order, stopping
	// early when the task is solved.
	Script []Step `mapstructure:"script"`

	// MaxSteps caps the number of script steps executed; zero or a value
	// past the end runs the whole script.
	MaxSteps   int    `mapstructure:"max_steps"`
	RandomSeed uint64 `mapstructure:"random_seed"`

	// Artifacts

	// Problem names the task in the run log. Defaults to "custom".
	Problem string `mapstructure:"problem"`

	// OutputPath is the directory run artifacts are written under, in a
	// <problem> subdirectory. Empty skips persistence.
	OutputPath string `mapstructure:"output_path"`
	SavePatch  bool   `mapstructure:"save_patch"`
}

// EnvSettings carries the environment options of the task.
type EnvSettings struct {
	Path              string         `mapstructure:"path"`
	Entrypoint        string         `mapstructure:"entrypoint"`
	ReadOnlyPatterns  []string       `mapstructure:"readonly_patterns"`
	DirTreeDepth      int            `mapstructure:"dir_tree_depth"`
	RunTimeoutSeconds int            `mapstructure:"run_timeout_seconds"`
	MaxScore          int            `mapstructure:"max_score"`
	Score             string         `mapstructure:"score"`
	Instructions      map[string]any `mapstructure:"instructions"`
}

// TerminalSettings selects where commands run. Type "local" (default)
// runs on the host; "docker" runs in the named container. With an image
// the episode owns the container lifecycle, otherwise the container must
// already be running.
type TerminalSettings struct {
	Type          string   `mapstructure:"type"`
	Container     string   `mapstructure:"container"`
	Image         string   `mapstructure:"image"`
	Env           []string `mapstructure:"env"`
	SetupCommands []string `mapstructure:"setup_commands"`
}

// Step is one scripted tool invocation.
type Step struct {
	Tool      string         `mapstructure:"tool"`
	Arguments map[string]any `mapstructure:"arguments"`
}

// Option is a functional option for configuring a Runner.
type Option func(*Runner)

// WithLogger sets the logger episodes run with.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics registry the environment records into.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithTrace streams lifecycle events into the logger while the episode
// runs.
func WithTrace(enabled bool) Option {
	return func(r *Runner) {
		r.trace = enabled
	}
}
