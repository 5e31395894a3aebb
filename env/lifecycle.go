package env

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/jonwraymond/debuggym/gym"
	"github.com/jonwraymond/debuggym/terminal"
	"github.com/jonwraymond/debuggym/toolbox"
)

// SetupWorkspace copies the task repository into a fresh ephemeral
// directory, points the terminal at it and dispatches the env_start event.
// With no Path configured, isolation is skipped and the terminal's own
// directory is used as is.
func (e *RepoEnv) SetupWorkspace(ctx context.Context) error {
	if e.closed {
		return ErrClosed
	}
	if err := e.ws.Setup(ctx, e.opts.Path, e.opts.ReadOnlyPatterns); err != nil {
		return err
	}
	e.ready = true
	if dir := e.ws.WorkingDir(); dir != "" {
		e.term.SetWorkingDir(dir)
	}
	e.logger.Info().Str("dir", e.WorkingDir()).Msg("workspace ready")

	e.QueueEvent(gym.EnvStart, sourceEnv, nil)
	_, err := e.ProcessEvents(ctx)
	return err
}

// Reset brings the environment back to the task's initial state: the
// workspace is restored to pristine, the rewrite counter and breakpoint
// table are cleared, and one baseline evaluation runs. Subscribers of the
// env_reset event are notified before the snapshot is assembled.
//
// The returned EnvInfo always carries score 0 and done false, with the
// baseline evaluation as its step observation.
func (e *RepoEnv) Reset(ctx context.Context) (EnvInfo, error) {
	if err := e.ensureReady(); err != nil {
		return EnvInfo{}, err
	}
	e.logger.Info().Msg("environment reset")

	if err := e.ws.Restore(ctx); err != nil {
		return EnvInfo{}, fmt.Errorf("restore workspace: %w", err)
	}
	e.rewriteCounter = 0
	e.breakpoints = map[string]string{}
	e.queue = nil
	e.allObservations = nil
	e.score = 0
	e.done = false

	out, err := e.Eval(ctx)
	if err != nil {
		return EnvInfo{}, err
	}

	e.stepObservation = gym.Obs(sourceEnv, out.Output)
	e.allObservations = []gym.Observation{e.stepObservation}

	e.QueueEvent(gym.EnvReset, sourceEnv, nil)
	if _, err := e.ProcessEvents(ctx); err != nil {
		return EnvInfo{}, err
	}
	return e.buildInfo(ctx, nil)
}

// Step executes one agent action. Resolution failures and schema
// violations complete the step with an explanatory observation instead of
// failing it; only infrastructure problems return an error.
func (e *RepoEnv) Step(ctx context.Context, call toolbox.ToolCall) (EnvInfo, error) {
	if err := e.ensureReady(); err != nil {
		return EnvInfo{}, err
	}
	e.metrics.RecordStep(call.Name)
	e.allObservations = nil

	tool, args, reason := e.registry.Resolve(call)
	switch {
	case reason != "":
		e.logger.Warn().Str("tool", call.Name).Msg("unresolved action")
		e.stepObservation = gym.Obs(sourceEnv, reason)
	default:
		if err := toolbox.ValidateArgs(tool, args); err != nil {
			e.logger.Warn().Str("tool", tool.Name()).Err(err).Msg("rejected action arguments")
			e.stepObservation = gym.Obs(sourceEnv, fmt.Sprintf("Error while using tool %s: %v", tool.Name(), err))
			break
		}
		obs, err := tool.Use(ctx, e, args)
		if err != nil {
			return EnvInfo{}, fmt.Errorf("use tool %s: %w", tool.Name(), err)
		}
		e.stepObservation = obs
		e.reactToTool(tool)
	}

	e.allObservations = append(e.allObservations, e.stepObservation)
	e.QueueEvent(gym.EnvStep, sourceEnv, map[string]any{"tool": call.Name})
	if _, err := e.ProcessEvents(ctx); err != nil {
		return EnvInfo{}, err
	}

	if e.hasEval {
		e.score = e.opts.Score(e.lastEval, e.opts.MaxScore)
		e.done = e.score >= e.opts.MaxScore
	}
	return e.buildInfo(ctx, &call)
}

// reactToTool applies the cross-cutting state updates hanging off the
// tool's kind: attempted rewrites count, debugger tools publish their
// breakpoint table.
func (e *RepoEnv) reactToTool(tool toolbox.Tool) {
	switch tool.Kind() {
	case toolbox.KindRewrite:
		e.rewriteCounter++
		e.metrics.RecordRewrite()
	case toolbox.KindDebugger:
		if rep, ok := tool.(toolbox.BreakpointReporter); ok {
			e.breakpoints = rep.CurrentBreakpoints()
		}
	}
}

// Eval runs the configured entrypoint in the working directory under the
// run timeout and retains the outcome for score computation. A run that
// exceeds the deadline is reported as a failed evaluation with the fixed
// "Timeout expired." output; one that cannot start is a failed evaluation
// carrying the start error. The returned error is reserved for an
// unusable environment or a canceled ctx.
func (e *RepoEnv) Eval(ctx context.Context) (gym.EvalOutput, error) {
	if err := e.ensureReady(); err != nil {
		return gym.EvalOutput{}, err
	}

	var out gym.EvalOutput
	timedOut := false
	start := time.Now()
	if e.opts.Entrypoint == "" {
		out = gym.EvalOutput{Success: false, Output: "No entrypoint is configured."}
	} else {
		success, output, err := e.term.Run(ctx, e.opts.Entrypoint, e.opts.RunTimeout)
		switch {
		case err != nil && ctx.Err() != nil:
			return gym.EvalOutput{}, err
		case errors.Is(err, context.DeadlineExceeded):
			timedOut = true
			out = gym.EvalOutput{Success: false, Output: "Timeout expired."}
		case err != nil:
			out = gym.EvalOutput{Success: false, Output: err.Error()}
		default:
			out = gym.EvalOutput{Success: success, Output: output}
		}
	}
	e.metrics.RecordEval(time.Since(start), timedOut)
	e.lastEval = out
	e.hasEval = true
	e.logger.Debug().Bool("success", out.Success).Dur("took", time.Since(start)).Msg("evaluation finished")
	return out, nil
}

// SwitchTerminal swaps the terminal evaluations run through, points it at
// the working directory and dispatches the switch_terminal event. The
// observations of any subscribers are returned to the caller.
func (e *RepoEnv) SwitchTerminal(ctx context.Context, t terminal.Terminal) ([]gym.Observation, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if t == nil {
		return nil, errors.New("env: terminal is nil")
	}
	if dir := e.ws.WorkingDir(); dir != "" {
		t.SetWorkingDir(dir)
	}
	e.term = t
	e.logger.Info().Msg("terminal switched")

	e.QueueEvent(gym.SwitchTerminal, sourceEnv, nil)
	return e.ProcessEvents(ctx)
}

// Close releases the working directory. Further operations fail with
// ErrClosed. Safe to call more than once.
func (e *RepoEnv) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.ready = false
	e.logger.Info().Msg("environment closed")
	return e.ws.Cleanup()
}

// buildInfo assembles the snapshot Step and Reset return.
func (e *RepoEnv) buildInfo(ctx context.Context, action *toolbox.ToolCall) (EnvInfo, error) {
	var tree string
	if e.ws.WorkingDir() != "" {
		t, err := e.ws.DisplayFiles(ctx)
		if err != nil {
			return EnvInfo{}, fmt.Errorf("render directory tree: %w", err)
		}
		tree = t
	}

	var evalObs gym.Observation
	if e.hasEval {
		evalObs = gym.Obs(sourceEnv, e.lastEval.Output)
	}

	return EnvInfo{
		StepObservation:    e.stepObservation,
		AllObservations:    slices.Clone(e.allObservations),
		EvalObservation:    evalObs,
		DirTree:            tree,
		CurrentBreakpoints: e.CurrentBreakpoints(),
		Action:             action,
		Instructions:       maps.Clone(e.opts.Instructions),
		Score:              e.score,
		MaxScore:           e.opts.MaxScore,
		Done:               e.done,
		RewriteCounter:     e.rewriteCounter,
		Tools:              e.registry.Definitions(),
	}, nil
}
