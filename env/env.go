package env

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"github.com/jonwraymond/debuggym/gym"
	"github.com/jonwraymond/debuggym/metrics"
	"github.com/jonwraymond/debuggym/terminal"
	"github.com/jonwraymond/debuggym/textutil"
	"github.com/jonwraymond/debuggym/toolbox"
	"github.com/jonwraymond/debuggym/workspace"
)

// Lifecycle errors.
var (
	// ErrClosed reports an operation on an environment after Close.
	ErrClosed = errors.New("env: environment closed")

	// ErrNotReady reports Reset/Step/Eval before SetupWorkspace succeeded.
	ErrNotReady = errors.New("env: workspace not set up")
)

// sourceEnv tags observations and events raised by the engine itself, as
// opposed to a tool.
const sourceEnv = "env"

// RepoEnv is the sandboxed execution environment. It owns one ephemeral
// working directory, the registered tools and their event subscriptions,
// and the mutable session state an agent drives through Reset and Step.
//
// Contract:
//   - Concurrency: not safe for concurrent use. The interaction protocol
//     is strictly request/response; one Step or Reset completes before the
//     next begins.
//   - Errors: agent mistakes become observations inside EnvInfo;
//     returned errors mean the environment itself failed.
//   - Ownership: the working directory belongs to the environment until
//     Close. EnvInfo snapshots belong to the caller.
type RepoEnv struct {
	opts   Options
	logger zerolog.Logger

	registry *toolbox.Registry
	hooks    *gym.Hooks
	ws       *workspace.Manager
	term     terminal.Terminal
	metrics  *metrics.Metrics
	rng      *rand.Rand

	queue           []queuedEvent
	allObservations []gym.Observation
	stepObservation gym.Observation

	lastEval       gym.EvalOutput
	hasEval        bool
	score          int
	done           bool
	rewriteCounter int
	breakpoints    map[string]string

	ready  bool
	closed bool
}

type queuedEvent struct {
	event  gym.Event
	source string
	data   map[string]any
}

// New constructs an environment in the Uninitialized phase. Call
// SetupWorkspace before Reset or Step.
func New(opts Options) (*RepoEnv, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	return &RepoEnv{
		opts:     opts,
		logger:   opts.Logger,
		registry: toolbox.NewRegistry(),
		hooks:    gym.NewHooks(),
		ws: workspace.New(
			workspace.WithTreeDepth(opts.DirTreeDepth),
			workspace.WithLogger(opts.Logger),
		),
		term:        opts.Terminal,
		metrics:     opts.Metrics,
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		breakpoints: map[string]string{},
	}, nil
}

// Seed reseeds the environment's random source deterministically.
func (e *RepoEnv) Seed(seed uint64) {
	e.rng = rand.New(rand.NewPCG(seed, seed))
}

// Rand returns the environment's private random source. Never shared
// between instances.
func (e *RepoEnv) Rand() *rand.Rand { return e.rng }

// AddTool registers tool and subscribes it to every lifecycle event whose
// handler interface it implements. Fails on a duplicate tool name.
func (e *RepoEnv) AddTool(tool toolbox.Tool) error {
	if err := e.registry.Add(tool); err != nil {
		return err
	}
	for _, event := range gym.AllEvents() {
		if err := e.hooks.Subscribe(event, tool); err != nil {
			if errors.Is(err, gym.ErrMissingHandler) {
				continue
			}
			return err
		}
	}
	e.logger.Debug().Str("tool", tool.Name()).Msg("tool registered")
	return nil
}

// RemoveTool unregisters the named tool, drops its event subscriptions and
// returns it. Fails when no such tool is registered.
func (e *RepoEnv) RemoveTool(name string) (toolbox.Tool, error) {
	tool, err := e.registry.Remove(name)
	if err != nil {
		return nil, err
	}
	for _, event := range gym.AllEvents() {
		e.hooks.Unsubscribe(event, tool)
	}
	e.logger.Debug().Str("tool", name).Msg("tool removed")
	return tool, nil
}

// Tool looks up a registered tool by name.
func (e *RepoEnv) Tool(name string) (toolbox.Tool, error) { return e.registry.Get(name) }

// HasTool reports whether a tool is registered under name.
func (e *RepoEnv) HasTool(name string) bool { return e.registry.Has(name) }

// ToolNames lists the registered tool names, comma separated, in
// registration order.
func (e *RepoEnv) ToolNames() string { return e.registry.Names() }

// Tools returns the registered tools in registration order.
func (e *RepoEnv) Tools() []toolbox.Tool { return e.registry.Tools() }

// Hooks exposes the event bus so non-tool subscribers, such as an event
// stream bridge, can attach.
func (e *RepoEnv) Hooks() *gym.Hooks { return e.hooks }

// Terminal returns the terminal evaluations currently run through.
func (e *RepoEnv) Terminal() terminal.Terminal { return e.term }

// QueueEvent buffers a lifecycle event. Buffered events are dispatched by
// ProcessEvents, which Step and Reset call after the tool finished.
func (e *RepoEnv) QueueEvent(event gym.Event, source string, data map[string]any) {
	e.queue = append(e.queue, queuedEvent{event: event, source: source, data: data})
}

// PendingEvents reports how many events are queued and not yet dispatched.
func (e *RepoEnv) PendingEvents() int { return len(e.queue) }

// ProcessEvents drains the event queue in FIFO order, notifying the
// subscribers of each event. Every observation handlers return is appended
// to the running observation log and included in the returned batch. A
// handler error stops the drain; events queued after the failing one stay
// queued.
func (e *RepoEnv) ProcessEvents(ctx context.Context) ([]gym.Observation, error) {
	var processed []gym.Observation
	for len(e.queue) > 0 {
		q := e.queue[0]
		e.queue = e.queue[1:]
		obs, err := e.hooks.Notify(ctx, gym.Notification{
			Environment: e,
			Event:       q.event,
			Source:      q.source,
			Data:        q.data,
		})
		processed = append(processed, obs...)
		e.allObservations = append(e.allObservations, obs...)
		if err != nil {
			return processed, fmt.Errorf("process %s: %w", q.event, err)
		}
	}
	return processed, nil
}

// AllObservations returns a copy of the observations accumulated since the
// start of the current Step or Reset.
func (e *RepoEnv) AllObservations() []gym.Observation {
	out := make([]gym.Observation, len(e.allObservations))
	copy(out, e.allObservations)
	return out
}

// WorkingDir reports the directory tools operate in: the ephemeral
// workspace copy, or the terminal's own directory when isolation was
// skipped.
func (e *RepoEnv) WorkingDir() string {
	if dir := e.ws.WorkingDir(); dir != "" {
		return dir
	}
	return e.term.WorkingDir()
}

// ReadFile reads a file relative to the working directory.
func (e *RepoEnv) ReadFile(path string) (string, error) {
	b, err := e.ws.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteFile writes a file relative to the working directory.
func (e *RepoEnv) WriteFile(path, content string) error {
	return e.ws.WriteFile(path, []byte(content))
}

// IsProtected reports whether path is read only for the agent: it matches
// a protected pattern or is novel content outside the pristine snapshot.
func (e *RepoEnv) IsProtected(ctx context.Context, path string) (bool, error) {
	return e.ws.IsProtected(ctx, path)
}

// DirectoryTree renders the working tree rooted at rel. A depth below one
// means the environment's configured tree depth.
func (e *RepoEnv) DirectoryTree(ctx context.Context, rel string, depth int) (string, error) {
	if depth < 1 {
		depth = e.opts.DirTreeDepth
	}
	return e.ws.TreeAt(ctx, rel, depth)
}

// DisplayFiles renders the full working directory listing at the
// configured depth.
func (e *RepoEnv) DisplayFiles(ctx context.Context) (string, error) {
	return e.ws.DisplayFiles(ctx)
}

// Patch renders the working directory's drift from the pristine snapshot
// as a unified diff, empty when nothing changed.
func (e *RepoEnv) Patch(ctx context.Context) (string, error) {
	return e.ws.Patch(ctx)
}

// Breakpoints returns a snapshot of the engine's breakpoint table.
func (e *RepoEnv) Breakpoints() map[string]string {
	return maps.Clone(e.breakpoints)
}

// CurrentBreakpoints renders the breakpoint table, one "line <N> in
// <file>" per entry ordered by file then line, or the fixed sentinel when
// none are set.
func (e *RepoEnv) CurrentBreakpoints() string {
	return textutil.FormatBreakpoints(e.breakpoints)
}

// RewriteCounter reports how many rewrite attempts happened since the last
// Reset.
func (e *RepoEnv) RewriteCounter() int { return e.rewriteCounter }

// LastEval returns the most recent evaluation outcome. ok is false before
// the first evaluation.
func (e *RepoEnv) LastEval() (out gym.EvalOutput, ok bool) {
	return e.lastEval, e.hasEval
}

func (e *RepoEnv) ensureReady() error {
	if e.closed {
		return ErrClosed
	}
	if !e.ready {
		return ErrNotReady
	}
	return nil
}
