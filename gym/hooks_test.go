package gym

import (
	"context"
	"errors"
	"testing"
)

// startRecorder subscribes to EnvStart and returns a fixed observation.
type startRecorder struct {
	obs   Observation
	err   error
	calls int
}

func (s *startRecorder) OnEnvStart(_ context.Context, _ Notification) (Observation, error) {
	s.calls++
	return s.obs, s.err
}

// resetRecorder subscribes to EnvReset.
type resetRecorder struct {
	calls int
}

func (s *resetRecorder) OnEnvReset(_ context.Context, _ Notification) (Observation, error) {
	s.calls++
	return Observation{}, nil
}

// mute implements no handler interfaces.
type mute struct{}

func TestNewHooks_AllEventsInitialized(t *testing.T) {
	hooks := NewHooks()

	for _, e := range AllEvents() {
		subs := hooks.Subscribers(e)
		if subs == nil {
			t.Errorf("Subscribers(%s) = nil, want empty list", e)
		}
		if len(subs) != 0 {
			t.Errorf("Subscribers(%s) has %d entries, want 0", e, len(subs))
		}
	}
}

func TestHooks_Subscribe(t *testing.T) {
	hooks := NewHooks()
	sub := &startRecorder{}

	if err := hooks.Subscribe(EnvStart, sub); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !hooks.Subscribed(EnvStart, sub) {
		t.Error("Subscribed() = false after Subscribe()")
	}

	err := hooks.Subscribe(EnvStart, sub)
	if !errors.Is(err, ErrAlreadySubscribed) {
		t.Errorf("Subscribe() twice error = %v, want %v", err, ErrAlreadySubscribed)
	}
}

func TestHooks_Subscribe_MissingHandler(t *testing.T) {
	hooks := NewHooks()
	sub := &mute{}

	err := hooks.Subscribe(EnvStart, sub)
	if !errors.Is(err, ErrMissingHandler) {
		t.Fatalf("Subscribe() error = %v, want %v", err, ErrMissingHandler)
	}
	if hooks.Subscribed(EnvStart, sub) {
		t.Error("Subscribed() = true after failed Subscribe()")
	}
}

func TestHooks_Subscribe_UnknownEvent(t *testing.T) {
	hooks := NewHooks()
	sub := &startRecorder{}

	err := hooks.Subscribe(Event("invalid"), sub)
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("Subscribe() error = %v, want %v", err, ErrUnknownEvent)
	}
	if got := err.Error(); got != "unknown event type: invalid" {
		t.Errorf("Subscribe() error = %q, want %q", got, "unknown event type: invalid")
	}
}

func TestHooks_Unsubscribe(t *testing.T) {
	hooks := NewHooks()
	sub := &startRecorder{}

	_ = hooks.Subscribe(EnvStart, sub)
	hooks.Unsubscribe(EnvStart, sub)
	if hooks.Subscribed(EnvStart, sub) {
		t.Error("Subscribed() = true after Unsubscribe()")
	}

	// Removing an absent subscriber is a silent no-op.
	hooks.Unsubscribe(EnvStart, sub)
	hooks.Unsubscribe(EnvReset, &resetRecorder{})
}

func TestHooks_Notify_Order(t *testing.T) {
	hooks := NewHooks()
	first := &startRecorder{obs: Obs("first", "one")}
	second := &startRecorder{obs: Obs("second", "two")}

	if err := hooks.Subscribe(EnvStart, first); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if err := hooks.Subscribe(EnvStart, second); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	observations, err := hooks.Notify(context.Background(), Notification{Event: EnvStart, Source: "env"})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(observations) != 2 {
		t.Fatalf("Notify() returned %d observations, want 2", len(observations))
	}
	if observations[0] != first.obs || observations[1] != second.obs {
		t.Errorf("Notify() = %v, want [%v %v]", observations, first.obs, second.obs)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("handler calls = %d, %d, want 1, 1", first.calls, second.calls)
	}
}

func TestHooks_Notify_SkipsZeroObservations(t *testing.T) {
	hooks := NewHooks()
	silent := &startRecorder{} // returns a zero Observation
	loud := &startRecorder{obs: Obs("loud", "hello")}

	_ = hooks.Subscribe(EnvStart, silent)
	_ = hooks.Subscribe(EnvStart, loud)

	observations, err := hooks.Notify(context.Background(), Notification{Event: EnvStart})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(observations) != 1 {
		t.Fatalf("Notify() returned %d observations, want 1", len(observations))
	}
	if observations[0] != loud.obs {
		t.Errorf("Notify()[0] = %v, want %v", observations[0], loud.obs)
	}
}

func TestHooks_Notify_HandlerErrorPropagates(t *testing.T) {
	hooks := NewHooks()
	boom := errors.New("handler failed")
	failing := &startRecorder{err: boom}
	after := &startRecorder{obs: Obs("after", "never")}

	_ = hooks.Subscribe(EnvStart, failing)
	_ = hooks.Subscribe(EnvStart, after)

	_, err := hooks.Notify(context.Background(), Notification{Event: EnvStart})
	if !errors.Is(err, boom) {
		t.Fatalf("Notify() error = %v, want %v", err, boom)
	}
	if after.calls != 0 {
		t.Errorf("later handler ran %d times after failure, want 0", after.calls)
	}
}

func TestHooks_Notify_UnknownEvent(t *testing.T) {
	hooks := NewHooks()

	_, err := hooks.Notify(context.Background(), Notification{Event: Event("bogus")})
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("Notify() error = %v, want %v", err, ErrUnknownEvent)
	}
}

func TestEvent_Valid(t *testing.T) {
	for _, e := range AllEvents() {
		if !e.Valid() {
			t.Errorf("Valid(%s) = false, want true", e)
		}
	}
	if Event("invalid").Valid() {
		t.Error("Valid(invalid) = true, want false")
	}
}

func TestEvent_HandlerName(t *testing.T) {
	cases := []struct {
		event Event
		want  string
	}{
		{EnvStart, "OnEnvStart"},
		{EnvReset, "OnEnvReset"},
		{EnvStep, "OnEnvStep"},
		{RewriteSuccess, "OnRewriteSuccess"},
		{RewriteFail, "OnRewriteFail"},
		{SwitchTerminal, "OnSwitchTerminal"},
	}
	for _, tc := range cases {
		if got := tc.event.HandlerName(); got != tc.want {
			t.Errorf("HandlerName(%s) = %q, want %q", tc.event, got, tc.want)
		}
	}
}
