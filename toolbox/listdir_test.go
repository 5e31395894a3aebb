package toolbox

import (
	"context"
	"testing"
)

func TestListDir(t *testing.T) {
	env := newFakeEnv()
	env.tree = "/tmp/RepoEnv-fake/\n|-- file1.txt\n|-- subdir/"
	tool := NewListDir()

	obs, err := tool.Use(context.Background(), env, map[string]any{"path": "subdir", "depth": 3})
	if err != nil {
		t.Fatalf("Use() error = %v", err)
	}
	if obs.Source != "listdir" {
		t.Errorf("observation source = %q, want listdir", obs.Source)
	}
	if obs.Observation != env.tree {
		t.Errorf("Use() = %q, want %q", obs.Observation, env.tree)
	}
	if env.lastTreeRel != "subdir" {
		t.Errorf("tree rel = %q, want subdir", env.lastTreeRel)
	}
	if env.lastTreeDepth != 3 {
		t.Errorf("tree depth = %d, want 3", env.lastTreeDepth)
	}
}

func TestListDirDefaults(t *testing.T) {
	env := newFakeEnv()
	env.tree = "/tmp/RepoEnv-fake/"
	tool := NewListDir()

	if _, err := tool.Use(context.Background(), env, nil); err != nil {
		t.Fatalf("Use() error = %v", err)
	}
	if env.lastTreeRel != "." {
		t.Errorf("tree rel = %q, want .", env.lastTreeRel)
	}
	if env.lastTreeDepth != 0 {
		t.Errorf("tree depth = %d, want 0 for the environment default", env.lastTreeDepth)
	}
}

func TestListDirNotDirectory(t *testing.T) {
	env := newFakeEnv()
	tool := NewListDir()

	obs, err := tool.Use(context.Background(), env, map[string]any{"path": "file1.txt"})
	if err != nil {
		t.Fatalf("Use() error = %v", err)
	}
	want := "Cannot list `file1.txt`: not a directory: file1.txt."
	if obs.Observation != want {
		t.Errorf("Use() = %q, want %q", obs.Observation, want)
	}
}
