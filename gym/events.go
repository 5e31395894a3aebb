package gym

import "context"

// Event is a lifecycle moment subscribers can react to. The set of events
// is closed: it is fixed at compile time and Hooks rejects values outside
// AllEvents.
type Event string

// Lifecycle events raised by the environment and its tools.
const (
	// EnvStart fires once when a workspace has been set up.
	EnvStart Event = "env_start"

	// EnvReset fires on every reset, after the workspace is restored and
	// mutable state is cleared.
	EnvReset Event = "env_reset"

	// EnvStep fires once per step, after the action has been handled.
	// Data carries the tool name under "tool".
	EnvStep Event = "env_step"

	// RewriteSuccess fires when a rewrite persisted new file content.
	RewriteSuccess Event = "rewrite_success"

	// RewriteFail fires when an attempted rewrite did not apply.
	RewriteFail Event = "rewrite_fail"

	// SwitchTerminal fires when the environment swaps its terminal
	// collaborator, e.g. from a local shell to a container.
	SwitchTerminal Event = "switch_terminal"
)

// AllEvents returns the closed event set in declaration order.
func AllEvents() []Event {
	return []Event{
		EnvStart,
		EnvReset,
		EnvStep,
		RewriteSuccess,
		RewriteFail,
		SwitchTerminal,
	}
}

// Valid reports whether e is a member of the closed event set.
func (e Event) Valid() bool {
	switch e {
	case EnvStart, EnvReset, EnvStep, RewriteSuccess, RewriteFail, SwitchTerminal:
		return true
	}
	return false
}

// HandlerName returns the name of the handler method a subscriber must
// implement to receive e. Used in capability-check error messages.
func (e Event) HandlerName() string {
	switch e {
	case EnvStart:
		return "OnEnvStart"
	case EnvReset:
		return "OnEnvReset"
	case EnvStep:
		return "OnEnvStep"
	case RewriteSuccess:
		return "OnRewriteSuccess"
	case RewriteFail:
		return "OnRewriteFail"
	case SwitchTerminal:
		return "OnSwitchTerminal"
	}
	return ""
}

// Environment is the surface handlers receive with every notification.
// It is intentionally narrow; richer capabilities live on the concrete
// environment and can be reached by type assertion when a handler needs
// them.
type Environment interface {
	// WorkingDir returns the absolute path of the ephemeral working
	// directory, or "" when the environment runs without isolation.
	WorkingDir() string

	// QueueEvent buffers an event for the next queue drain. Handlers may
	// queue further events; they must not trigger a nested synchronous
	// notification.
	QueueEvent(event Event, source string, data map[string]any)
}

// Notification is the payload delivered to every handler of an event.
type Notification struct {
	// Environment is the notifying environment. May be nil in tests.
	Environment Environment

	// Event is the lifecycle moment being dispatched.
	Event Event

	// Source names the subsystem that raised the event.
	Source string

	// Data carries event-specific context, e.g. the rewritten path for
	// RewriteSuccess. May be nil.
	Data map[string]any
}

// Per-event handler interfaces. A subscriber implements the interface for
// each event it subscribes to; Subscribe validates this at registration
// time. A handler returns the observation to fold into the environment's
// observation log, or a zero Observation to contribute nothing. Errors
// propagate to the notify caller and abort the fan-out.

// EnvStartHandler receives EnvStart.
type EnvStartHandler interface {
	OnEnvStart(ctx context.Context, n Notification) (Observation, error)
}

// EnvResetHandler receives EnvReset.
type EnvResetHandler interface {
	OnEnvReset(ctx context.Context, n Notification) (Observation, error)
}

// EnvStepHandler receives EnvStep.
type EnvStepHandler interface {
	OnEnvStep(ctx context.Context, n Notification) (Observation, error)
}

// RewriteSuccessHandler receives RewriteSuccess.
type RewriteSuccessHandler interface {
	OnRewriteSuccess(ctx context.Context, n Notification) (Observation, error)
}

// RewriteFailHandler receives RewriteFail.
type RewriteFailHandler interface {
	OnRewriteFail(ctx context.Context, n Notification) (Observation, error)
}

// SwitchTerminalHandler receives SwitchTerminal.
type SwitchTerminalHandler interface {
	OnSwitchTerminal(ctx context.Context, n Notification) (Observation, error)
}
