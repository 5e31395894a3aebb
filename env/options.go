package env

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonwraymond/debuggym/metrics"
	"github.com/jonwraymond/debuggym/terminal"
	"github.com/jonwraymond/debuggym/workspace"
)

// Default configuration values.
const (
	DefaultRunTimeout   = 30 * time.Second
	DefaultMaxScore     = 1
	DefaultDirTreeDepth = workspace.DefaultTreeDepth
)

// Errors returned by Options validation.
var (
	ErrBadTreeDepth = errors.New("env: DirTreeDepth must be positive")
	ErrBadMaxScore  = errors.New("env: MaxScore must be positive")
)

// Options configures a RepoEnv.
type Options struct {
	// Path is the task repository copied into the ephemeral working
	// directory. Empty skips workspace isolation entirely: tools then
	// operate wherever the terminal points, with no restore or diff
	// support. Optional.
	Path string

	// Entrypoint is the shell command an evaluation runs, e.g.
	// "python -m pytest -sv .". Empty makes every evaluation report a
	// failed EvalOutput explaining that no entrypoint is configured.
	Entrypoint string

	// ReadOnlyPatterns are glob patterns for files the agent may read but
	// not rewrite, in addition to any listed in the repository's
	// .debugreadonly file.
	ReadOnlyPatterns []string

	// DirTreeDepth bounds the directory listing in EnvInfo.
	// Default: 2.
	DirTreeDepth int

	// RunTimeout is the wall clock budget of one evaluation run.
	// Default: 30s.
	RunTimeout time.Duration

	// MaxScore is the score at which the task counts as done.
	// Default: 1.
	MaxScore int

	// Score maps the latest evaluation to a score between 0 and MaxScore.
	// Default: [DefaultScore].
	Score ScoreFunc

	// Instructions is the task statement surfaced verbatim in every
	// EnvInfo. Optional.
	Instructions map[string]any

	// Terminal runs evaluations. Default: terminal.NewLocal().
	Terminal terminal.Terminal

	// Metrics receives step/rewrite/eval counts. Optional; nil disables
	// metrics.
	Metrics *metrics.Metrics

	// Logger receives engine diagnostics. The zero value discards
	// everything.
	Logger zerolog.Logger
}

// validate checks option values that have no sensible fallback.
func (o *Options) validate() error {
	if o.DirTreeDepth < 0 {
		return fmt.Errorf("%w, got %d", ErrBadTreeDepth, o.DirTreeDepth)
	}
	if o.MaxScore < 0 {
		return fmt.Errorf("%w, got %d", ErrBadMaxScore, o.MaxScore)
	}
	return nil
}

// applyDefaults sets default values for unset optional fields.
func (o *Options) applyDefaults() {
	if o.DirTreeDepth == 0 {
		o.DirTreeDepth = DefaultDirTreeDepth
	}
	if o.RunTimeout <= 0 {
		o.RunTimeout = DefaultRunTimeout
	}
	if o.MaxScore == 0 {
		o.MaxScore = DefaultMaxScore
	}
	if o.Score == nil {
		o.Score = DefaultScore
	}
	if o.Instructions == nil {
		o.Instructions = map[string]any{}
	}
	if o.Terminal == nil {
		o.Terminal = terminal.NewLocal()
	}
}
