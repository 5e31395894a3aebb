// Package run drives scripted episodes: it builds the environment a
// Settings value describes, registers the requested tools, plays the
// script until the task is solved, and persists the run artifacts.
//
// The run command is a thin wrapper over this package; tests and
// programs can drive episodes directly through a [Runner].
package run

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/jonwraymond/debuggym/env"
	"github.com/jonwraymond/debuggym/eventstream"
	"github.com/jonwraymond/debuggym/history"
	"github.com/jonwraymond/debuggym/metrics"
	"github.com/jonwraymond/debuggym/runlog"
	"github.com/jonwraymond/debuggym/terminal"
	"github.com/jonwraymond/debuggym/toolbox"
)

// Runner executes one scripted episode per Run call.
type Runner struct {
	settings Settings
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	trace    bool
}

// New returns a Runner for the given settings.
func New(settings Settings, opts ...Option) *Runner {
	r := &Runner{settings: settings, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	r.applyDefaults()
	return r
}

func (r *Runner) applyDefaults() {
	if r.metrics == nil {
		r.metrics = metrics.New()
	}
	if r.settings.Problem == "" {
		r.settings.Problem = "custom"
	}
}

// Result summarizes a finished episode.
type Result struct {
	Problem  string
	Solved   bool
	Score    int
	MaxScore int

	// Steps counts the script steps executed, the initial reset excluded.
	Steps int

	// Dir is the artifact directory, empty when persistence is off.
	Dir string
}

// Run plays the scripted episode and returns its outcome. The agent name
// is recorded in the run log. Artifacts are written under OutputPath
// when it is set.
func (r *Runner) Run(ctx context.Context, agent string) (Result, error) {
	term, docker, err := r.buildTerminal()
	if err != nil {
		return Result{}, err
	}
	score, err := scoreFunc(r.settings.Env.Score)
	if err != nil {
		return Result{}, err
	}

	repo, err := env.New(env.Options{
		Path:             r.settings.Env.Path,
		Entrypoint:       r.settings.Env.Entrypoint,
		ReadOnlyPatterns: r.settings.Env.ReadOnlyPatterns,
		DirTreeDepth:     r.settings.Env.DirTreeDepth,
		RunTimeout:       time.Duration(r.settings.Env.RunTimeoutSeconds) * time.Second,
		MaxScore:         r.settings.Env.MaxScore,
		Score:            score,
		Instructions:     r.settings.Env.Instructions,
		Terminal:         term,
		Metrics:          r.metrics,
		Logger:           r.logger,
	})
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			r.logger.Warn().Err(err).Msg("close environment")
		}
	}()
	repo.Seed(r.settings.RandomSeed)

	for _, name := range r.settings.Tools {
		tool, err := builtinTool(name)
		if err != nil {
			return Result{}, err
		}
		if err := repo.AddTool(tool); err != nil {
			return Result{}, err
		}
	}

	if err := repo.SetupWorkspace(ctx); err != nil {
		return Result{}, err
	}
	if docker != nil && r.settings.Terminal.Image != "" {
		if err := docker.Start(ctx, r.settings.Terminal.Image); err != nil {
			return Result{}, err
		}
		defer func() {
			if err := docker.Stop(context.Background()); err != nil {
				r.logger.Warn().Err(err).Msg("stop container")
			}
		}()
	}

	if r.trace {
		bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
		defer bus.Close()
		bridge := eventstream.New(bus, "")
		if err := bridge.Attach(repo.Hooks()); err != nil {
			return Result{}, err
		}
		messages, err := bus.Subscribe(ctx, bridge.Topic())
		if err != nil {
			return Result{}, err
		}
		go func() {
			for msg := range messages {
				r.logger.Info().RawJSON("event", msg.Payload).Msg("trace")
				msg.Ack()
			}
		}()
	}

	tracker := history.New(0)
	info, err := repo.Reset(ctx)
	if err != nil {
		return Result{}, err
	}
	tracker.Step(history.FromInfo(info))
	r.logger.Info().Int("score", info.Score).Int("max_score", info.MaxScore).Msg("reset")

	steps := r.settings.Script
	if r.settings.MaxSteps > 0 && r.settings.MaxSteps < len(steps) {
		steps = steps[:r.settings.MaxSteps]
	}
	for i, step := range steps {
		call := toolbox.ToolCall{
			ID:        fmt.Sprintf("step-%d", i+1),
			Name:      step.Tool,
			Arguments: step.Arguments,
		}
		info, err = repo.Step(ctx, call)
		if err != nil {
			return Result{}, err
		}
		tracker.Step(history.FromInfo(info))
		r.logger.Info().Str("tool", step.Tool).Int("score", info.Score).Bool("done", info.Done).Msg("step")
		if info.Done {
			break
		}
	}

	result := Result{
		Problem:  r.settings.Problem,
		Solved:   info.Done,
		Score:    info.Score,
		MaxScore: info.MaxScore,
		Steps:    tracker.Len() - 1,
	}
	if r.settings.OutputPath != "" {
		result.Dir = filepath.Join(r.settings.OutputPath, r.settings.Problem)
		if err := r.save(ctx, repo, tracker, agent, result.Dir); err != nil {
			return Result{}, err
		}
		r.logger.Info().Str("dir", result.Dir).Msg("run log saved")
	}
	return result, nil
}

// save writes the run log, the transcript, and optionally the workspace
// patch into dir.
func (r *Runner) save(ctx context.Context, repo *env.RepoEnv, tracker *history.Tracker, agent, dir string) error {
	l := runlog.New(r.settings.Problem, runlog.Config{
		AgentType:  agent,
		MaxSteps:   r.settings.MaxSteps,
		RandomSeed: r.settings.RandomSeed,
		Entrypoint: r.settings.Env.Entrypoint,
		Tools:      r.settings.Tools,
	})
	l.Log = tracker.All()
	if last, ok := tracker.Last(); ok {
		l.Success = last.Done
	}
	if err := l.Save(dir); err != nil {
		return err
	}
	if err := runlog.SaveSession(dir, l.Log); err != nil {
		return err
	}
	if !r.settings.SavePatch {
		return nil
	}
	patch, err := repo.Patch(ctx)
	if err != nil {
		return err
	}
	return runlog.SavePatch(dir, patch)
}

// buildTerminal returns the configured terminal; the second return value
// is non-nil when it is a Docker terminal whose lifecycle the episode
// owns.
func (r *Runner) buildTerminal() (terminal.Terminal, *terminal.Docker, error) {
	settings := r.settings.Terminal
	opts := []terminal.Option{terminal.WithLogger(r.logger)}
	if len(settings.Env) > 0 {
		opts = append(opts, terminal.WithEnv(settings.Env...))
	}
	if len(settings.SetupCommands) > 0 {
		opts = append(opts, terminal.WithSessionCommands(settings.SetupCommands...))
	}
	switch settings.Type {
	case "", "local":
		return terminal.NewLocal(opts...), nil, nil
	case "docker":
		if settings.Container == "" {
			return nil, nil, errors.New("docker terminal requires a container name")
		}
		docker := terminal.NewDocker(settings.Container, opts...)
		return docker, docker, nil
	}
	return nil, nil, fmt.Errorf("unknown terminal type %q", settings.Type)
}

func builtinTool(name string) (toolbox.Tool, error) {
	switch name {
	case "rewrite":
		return toolbox.NewRewrite(), nil
	case "view":
		return toolbox.NewView(), nil
	case "listdir":
		return toolbox.NewListDir(), nil
	case "eval":
		return toolbox.NewEval(), nil
	case "debug":
		return toolbox.NewDebug(), nil
	}
	return nil, fmt.Errorf("unknown tool %q", name)
}

func scoreFunc(name string) (env.ScoreFunc, error) {
	switch name {
	case "", "default":
		return nil, nil
	case "pytest":
		return env.PytestScore, nil
	}
	return nil, fmt.Errorf("unknown score function %q", name)
}
