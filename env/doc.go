// Package env provides RepoEnv, the sandboxed execution environment an
// agent interacts with through a step/reset protocol.
//
// RepoEnv ties the other subsystems together: a workspace.Manager holding
// the ephemeral copy of the task repository, a terminal.Terminal running
// the evaluation entrypoint, a toolbox.Registry resolving agent actions,
// and gym.Hooks fanning lifecycle events out to subscribed tools.
//
// # Lifecycle
//
// An environment moves through four phases:
//
//   - Uninitialized: freshly constructed with [New]; only tool wiring and
//     configuration are valid.
//   - Ready: after [RepoEnv.SetupWorkspace] copied the task repository into
//     an ephemeral working directory.
//   - Active: after [RepoEnv.Reset] restored the workspace, ran the
//     baseline evaluation and produced the first EnvInfo. [RepoEnv.Step]
//     keeps the environment Active until the task is done.
//   - Closed: after [RepoEnv.Close] released the working directory. No
//     further operations are valid.
//
// # Basic Usage
//
//	repo, err := env.New(env.Options{
//	    Path:       "/tasks/pytest-bug",
//	    Entrypoint: "python -m pytest -sv .",
//	    RunTimeout: 30 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	defer repo.Close()
//
//	for _, tool := range []toolbox.Tool{toolbox.NewRewrite(), toolbox.NewEval()} {
//	    if err := repo.AddTool(tool); err != nil {
//	        return err
//	    }
//	}
//
//	if err := repo.SetupWorkspace(ctx); err != nil {
//	    return err
//	}
//	info, err := repo.Reset(ctx)
//	for !info.Done {
//	    info, err = repo.Step(ctx, nextAction(info))
//	    ...
//	}
//
// # Steps
//
// Step resolves the incoming ToolCall against the registry and invokes the
// tool. An action the agent got wrong, an unknown tool name or arguments
// failing the tool's schema, never surfaces as a Go error: it becomes the
// step observation so the agent can read its own mistake. Go errors are
// reserved for infrastructure problems.
//
// After the tool returns, the engine reacts to the tool's Kind: rewrite
// attempts bump the rewrite counter, debugger tools have their breakpoint
// table adopted. Events queued during the step are then drained in FIFO
// order, their observations appended after the step observation. Each Step
// and Reset returns a fresh [EnvInfo] snapshot; callers own it.
package env
