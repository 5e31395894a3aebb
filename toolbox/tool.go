package toolbox

import (
	"context"
	"fmt"

	"github.com/jonwraymond/debuggym/gym"
)

// Kind tags a tool with the behavior class the engine reacts to. The set
// is open; the engine only keys on KindRewrite and KindDebugger.
type Kind string

const (
	// KindRewrite marks tools that modify workspace files. The engine
	// counts every invocation as an attempted rewrite.
	KindRewrite Kind = "rewrite"

	// KindDebugger marks tools that own a breakpoint table. The engine
	// mirrors their table after each invocation.
	KindDebugger Kind = "debugger"

	// KindEval marks tools that trigger an evaluation run.
	KindEval Kind = "eval"

	// KindInspect marks read only tools such as file viewers and
	// directory listings.
	KindInspect Kind = "inspect"
)

// Tool is one named, schema described unit of agent capability.
//
// Contract:
// - Concurrency: tools are driven by the single goroutine running the
//   environment protocol; implementations need no internal locking.
// - Errors: agent recoverable problems (bad arguments, protected paths)
//   become Observations; a returned error is an infrastructure failure
//   and aborts the step.
// - Ownership: args is read only for the duration of the call.
type Tool interface {
	// Kind returns the behavior class the engine keys on.
	Kind() Kind

	// Name returns the unique, stable registration name.
	Name() string

	// Description returns the summary published to the agent.
	Description() string

	// Arguments declares the tool's parameters by name.
	Arguments() map[string]ArgSpec

	// Use invokes the tool against env with the call's arguments.
	Use(ctx context.Context, env Environment, args map[string]any) (gym.Observation, error)
}

// ArgSpec describes one declared tool parameter.
type ArgSpec struct {
	// Type lists the accepted JSON types, e.g. ["string"].
	Type []string `json:"type"`

	// Description explains the parameter to the agent.
	Description string `json:"description"`
}

// ToolCall is an incoming action record naming a tool and its arguments.
// It is transient; nothing retains it past the call.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Environment is the capability surface tools act against. The concrete
// environment implements it; tests substitute fakes.
type Environment interface {
	gym.Environment

	// ReadFile returns the content of the workspace file at the relative
	// path.
	ReadFile(path string) (string, error)

	// WriteFile replaces the content of the workspace file at the
	// relative path, creating it if needed.
	WriteFile(path, content string) error

	// IsProtected reports whether the relative path may not be modified
	// by the agent.
	IsProtected(ctx context.Context, path string) (bool, error)

	// DirectoryTree renders the listing rooted at the relative path rel
	// down to depth levels. rel "" or "." is the whole working directory;
	// depth below 1 means the environment's configured depth.
	DirectoryTree(ctx context.Context, rel string, depth int) (string, error)

	// Eval runs the task entrypoint and returns its outcome. The
	// environment retains the result for score computation.
	Eval(ctx context.Context) (gym.EvalOutput, error)

	// Breakpoints returns the engine's breakpoint table keyed by
	// "path|||line". Callers must not mutate it.
	Breakpoints() map[string]string
}

// BreakpointReporter is implemented by debugger tools. After invoking a
// KindDebugger tool the engine adopts the reported table, so additions and
// removals both take effect.
type BreakpointReporter interface {
	// CurrentBreakpoints returns a snapshot of the tool's breakpoint
	// table keyed by "path|||line". The caller owns the snapshot.
	CurrentBreakpoints() map[string]string
}

// ToolError wraps an infrastructure failure with the tool and the failing
// operation.
type ToolError struct {
	Tool string
	Op   string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %s: %v", e.Tool, e.Op, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }
