package gym

import (
	"context"
	"errors"
	"fmt"
)

// Errors returned by Hooks operations. These are programming-contract
// violations: they indicate wiring mistakes and are meant to fail fast
// during setup, never to be converted into agent observations.
var (
	// ErrUnknownEvent indicates an event outside the closed enumeration.
	ErrUnknownEvent = errors.New("unknown event type")

	// ErrMissingHandler indicates a subscriber that does not implement the
	// handler interface for the requested event.
	ErrMissingHandler = errors.New("subscriber does not implement handler")

	// ErrAlreadySubscribed indicates a duplicate subscription of the same
	// subscriber to the same event.
	ErrAlreadySubscribed = errors.New("already subscribed to event")
)

// Hooks is an ordered publish/subscribe registry over the closed Event set.
// Every event has an entry from construction, even when no subscriber is
// registered. Subscribers are notified synchronously in subscription order.
//
// Contract:
// - Concurrency: not safe for concurrent use; callers drive it from the
//   single goroutine running the environment protocol.
// - Errors: Subscribe returns ErrUnknownEvent/ErrMissingHandler/
//   ErrAlreadySubscribed; Notify propagates handler errors unwrapped.
// - Ownership: Hooks does not copy subscribers; they must stay valid while
//   registered.
type Hooks struct {
	listeners map[Event][]any
}

// NewHooks returns a Hooks with an empty subscriber list for every member
// of the closed event set.
func NewHooks() *Hooks {
	listeners := make(map[Event][]any, len(AllEvents()))
	for _, e := range AllEvents() {
		listeners[e] = []any{}
	}
	return &Hooks{listeners: listeners}
}

// Subscribe registers subscriber for event. It fails when the event is not
// a member of the closed set, when the subscriber does not implement the
// event's handler interface, or when the subscriber is already registered
// for that event.
func (h *Hooks) Subscribe(event Event, subscriber any) error {
	if !event.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}
	if !implementsHandler(event, subscriber) {
		return fmt.Errorf("%w: %s", ErrMissingHandler, event.HandlerName())
	}
	for _, s := range h.listeners[event] {
		if s == subscriber {
			return fmt.Errorf("%w: %s", ErrAlreadySubscribed, event)
		}
	}
	h.listeners[event] = append(h.listeners[event], subscriber)
	return nil
}

// Unsubscribe removes subscriber from event's list. Removing an absent
// subscriber, or using an event with no entry, is a silent no-op.
func (h *Hooks) Unsubscribe(event Event, subscriber any) {
	subs := h.listeners[event]
	for i, s := range subs {
		if s == subscriber {
			h.listeners[event] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Subscribed reports whether subscriber is registered for event.
func (h *Hooks) Subscribed(event Event, subscriber any) bool {
	for _, s := range h.listeners[event] {
		if s == subscriber {
			return true
		}
	}
	return false
}

// Subscribers returns a copy of the ordered subscriber list for event.
func (h *Hooks) Subscribers(event Event) []any {
	subs := h.listeners[event]
	out := make([]any, len(subs))
	copy(out, subs)
	return out
}

// Notify invokes every current subscriber of n.Event in subscription order
// and returns their non-zero observations in that order. Handler failures
// are not isolated: the first error aborts the fan-out and is returned to
// the caller together with the observations collected so far.
func (h *Hooks) Notify(ctx context.Context, n Notification) ([]Observation, error) {
	if !n.Event.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, n.Event)
	}
	var observations []Observation
	for _, sub := range h.listeners[n.Event] {
		obs, err := dispatch(ctx, sub, n)
		if err != nil {
			return observations, err
		}
		if !obs.IsZero() {
			observations = append(observations, obs)
		}
	}
	return observations, nil
}

// implementsHandler is the capability check behind Subscribe.
func implementsHandler(event Event, subscriber any) bool {
	switch event {
	case EnvStart:
		_, ok := subscriber.(EnvStartHandler)
		return ok
	case EnvReset:
		_, ok := subscriber.(EnvResetHandler)
		return ok
	case EnvStep:
		_, ok := subscriber.(EnvStepHandler)
		return ok
	case RewriteSuccess:
		_, ok := subscriber.(RewriteSuccessHandler)
		return ok
	case RewriteFail:
		_, ok := subscriber.(RewriteFailHandler)
		return ok
	case SwitchTerminal:
		_, ok := subscriber.(SwitchTerminalHandler)
		return ok
	}
	return false
}

// dispatch routes one notification to the subscriber's handler for the
// event. Subscribe guarantees the assertion succeeds.
func dispatch(ctx context.Context, subscriber any, n Notification) (Observation, error) {
	switch n.Event {
	case EnvStart:
		return subscriber.(EnvStartHandler).OnEnvStart(ctx, n)
	case EnvReset:
		return subscriber.(EnvResetHandler).OnEnvReset(ctx, n)
	case EnvStep:
		return subscriber.(EnvStepHandler).OnEnvStep(ctx, n)
	case RewriteSuccess:
		return subscriber.(RewriteSuccessHandler).OnRewriteSuccess(ctx, n)
	case RewriteFail:
		return subscriber.(RewriteFailHandler).OnRewriteFail(ctx, n)
	case SwitchTerminal:
		return subscriber.(SwitchTerminalHandler).OnSwitchTerminal(ctx, n)
	}
	return Observation{}, fmt.Errorf("%w: %s", ErrUnknownEvent, n.Event)
}
