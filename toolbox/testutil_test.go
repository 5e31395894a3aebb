package toolbox

import (
	"context"
	"fmt"

	"github.com/jonwraymond/debuggym/gym"
)

// fakeEnv is an in-memory Environment for tool tests.
type fakeEnv struct {
	workdir       string
	files         map[string]string
	protected     map[string]bool
	breakpoints   map[string]string
	tree          string
	lastTreeRel   string
	lastTreeDepth int
	evalOutput    gym.EvalOutput
	evalCalls     int
	queued        []queuedEvent
}

type queuedEvent struct {
	event  gym.Event
	source string
	data   map[string]any
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{
		workdir:     "/tmp/RepoEnv-fake",
		files:       make(map[string]string),
		protected:   make(map[string]bool),
		breakpoints: make(map[string]string),
	}
}

func (f *fakeEnv) WorkingDir() string { return f.workdir }

func (f *fakeEnv) QueueEvent(event gym.Event, source string, data map[string]any) {
	f.queued = append(f.queued, queuedEvent{event: event, source: source, data: data})
}

func (f *fakeEnv) ReadFile(path string) (string, error) {
	content, ok := f.files[path]
	if !ok {
		return "", fmt.Errorf("open %s: no such file", path)
	}
	return content, nil
}

func (f *fakeEnv) WriteFile(path, content string) error {
	f.files[path] = content
	return nil
}

func (f *fakeEnv) IsProtected(_ context.Context, path string) (bool, error) {
	return f.protected[path], nil
}

func (f *fakeEnv) DirectoryTree(_ context.Context, rel string, depth int) (string, error) {
	f.lastTreeRel = rel
	f.lastTreeDepth = depth
	if f.tree == "" {
		return "", fmt.Errorf("not a directory: %s", rel)
	}
	return f.tree, nil
}

func (f *fakeEnv) Eval(_ context.Context) (gym.EvalOutput, error) {
	f.evalCalls++
	return f.evalOutput, nil
}

func (f *fakeEnv) Breakpoints() map[string]string { return f.breakpoints }

// stubTool is a minimal Tool with canned responses for registry tests.
type stubTool struct {
	name string
	kind Kind
	args map[string]ArgSpec
	obs  gym.Observation
}

func (s *stubTool) Kind() Kind {
	if s.kind == "" {
		return KindInspect
	}
	return s.kind
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub " + s.name }

func (s *stubTool) Arguments() map[string]ArgSpec {
	if s.args == nil {
		return map[string]ArgSpec{}
	}
	return s.args
}

func (s *stubTool) Use(context.Context, Environment, map[string]any) (gym.Observation, error) {
	return s.obs, nil
}
