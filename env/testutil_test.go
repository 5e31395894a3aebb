package env

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonwraymond/debuggym/gym"
	"github.com/jonwraymond/debuggym/toolbox"
)

// newRepo builds the canonical fixture tree: file1.txt, file2.txt and
// subdir/subfile1.txt under a fresh temp dir.
func newRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "file1.txt"), "")
	writeFile(t, filepath.Join(dir, "file2.txt"), "")
	writeFile(t, filepath.Join(dir, "subdir", "subfile1.txt"), "")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// newEnv constructs an environment over a fixture repo and a fake
// terminal, runs SetupWorkspace, and tears everything down with the test.
func newEnv(t *testing.T, opts Options) (*RepoEnv, *fakeTerm) {
	t.Helper()
	term := &fakeTerm{}
	if opts.Path == "" {
		opts.Path = newRepo(t)
	}
	if opts.Entrypoint == "" {
		opts.Entrypoint = "run-task"
	}
	opts.Terminal = term

	e, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })
	if err := e.SetupWorkspace(context.Background()); err != nil {
		t.Fatalf("SetupWorkspace() error = %v", err)
	}
	return e, term
}

// fakeTerm plays back a canned evaluation outcome and records the calls.
type fakeTerm struct {
	dir         string
	success     bool
	output      string
	err         error
	runs        int
	lastCommand string
	lastTimeout time.Duration
}

func (f *fakeTerm) Run(_ context.Context, command string, timeout time.Duration) (bool, string, error) {
	f.runs++
	f.lastCommand = command
	f.lastTimeout = timeout
	return f.success, f.output, f.err
}

func (f *fakeTerm) WorkingDir() string { return f.dir }

func (f *fakeTerm) SetWorkingDir(dir string) { f.dir = dir }

// scriptedTool is a Tool whose Use behavior is supplied by the test.
type scriptedTool struct {
	name string
	kind toolbox.Kind
	args map[string]toolbox.ArgSpec
	use  func(ctx context.Context, env toolbox.Environment, args map[string]any) (gym.Observation, error)
}

func (s *scriptedTool) Kind() toolbox.Kind {
	if s.kind == "" {
		return toolbox.KindInspect
	}
	return s.kind
}

func (s *scriptedTool) Name() string        { return s.name }
func (s *scriptedTool) Description() string { return "scripted " + s.name }

func (s *scriptedTool) Arguments() map[string]toolbox.ArgSpec {
	if s.args == nil {
		return map[string]toolbox.ArgSpec{}
	}
	return s.args
}

func (s *scriptedTool) Use(ctx context.Context, env toolbox.Environment, args map[string]any) (gym.Observation, error) {
	if s.use == nil {
		return gym.Obs(s.name, "ok"), nil
	}
	return s.use(ctx, env, args)
}

// observantTool is a scriptedTool that also listens for env_reset.
type observantTool struct {
	scriptedTool
	resets int
}

func (o *observantTool) OnEnvReset(context.Context, gym.Notification) (gym.Observation, error) {
	o.resets++
	return gym.Obs(o.name, "reset seen"), nil
}
