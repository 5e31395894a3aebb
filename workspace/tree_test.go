package workspace

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisplayFiles(t *testing.T) {
	m := newWorkspace(t)

	got, err := m.DisplayFiles(context.Background())
	if err != nil {
		t.Fatalf("DisplayFiles() error = %v", err)
	}
	want := "Listing files in the current working directory. (read-only) indicates read-only files. Max depth: 2.\n" +
		m.WorkingDir() + "/\n" +
		"|-- file1.txt\n" +
		"|-- file2.txt\n" +
		"|-- subdir/\n" +
		"  |-- subfile1.txt"
	if got != want {
		t.Errorf("DisplayFiles() =\n%s\nwant\n%s", got, want)
	}
}

func TestDisplayFilesReadOnly(t *testing.T) {
	m := newWorkspace(t)

	writeFile(t, m.WorkingDir(), "read-only-file.txt", "hello world")

	got, err := m.DisplayFiles(context.Background())
	if err != nil {
		t.Fatalf("DisplayFiles() error = %v", err)
	}
	want := "Listing files in the current working directory. (read-only) indicates read-only files. Max depth: 2.\n" +
		m.WorkingDir() + "/\n" +
		"|-- file1.txt\n" +
		"|-- file2.txt\n" +
		"|-- read-only-file.txt (read-only)\n" +
		"|-- subdir/\n" +
		"  |-- subfile1.txt"
	if got != want {
		t.Errorf("DisplayFiles() =\n%s\nwant\n%s", got, want)
	}
}

func TestTreeDepthLimit(t *testing.T) {
	m := newWorkspace(t)

	got, err := m.Tree(context.Background(), 1)
	if err != nil {
		t.Fatalf("Tree() error = %v", err)
	}
	if !strings.Contains(got, "|-- subdir/") {
		t.Errorf("Tree() = %q, want subdir listed", got)
	}
	if strings.Contains(got, "subfile1.txt") {
		t.Errorf("Tree() = %q, want contents below depth hidden", got)
	}
	if !strings.Contains(got, "Max depth: 1.") {
		t.Errorf("Tree() = %q, want header naming depth 1", got)
	}
}

func TestTreeHidesDotEntries(t *testing.T) {
	m := newWorkspace(t)

	writeFile(t, m.WorkingDir(), ".hidden", "secret")

	got, err := m.DisplayFiles(context.Background())
	if err != nil {
		t.Fatalf("DisplayFiles() error = %v", err)
	}
	if strings.Contains(got, ".hidden") || strings.Contains(got, ".git") {
		t.Errorf("DisplayFiles() = %q, want dot entries hidden", got)
	}
}

func TestTreeAnnotatesPatternMatches(t *testing.T) {
	m := newWorkspace(t, "*2.txt")

	got, err := m.DisplayFiles(context.Background())
	if err != nil {
		t.Fatalf("DisplayFiles() error = %v", err)
	}
	if !strings.Contains(got, "|-- file2.txt (read-only)") {
		t.Errorf("DisplayFiles() = %q, want file2.txt flagged", got)
	}
	if strings.Contains(got, "file1.txt (read-only)") {
		t.Errorf("DisplayFiles() = %q, want file1.txt unflagged", got)
	}
}

func TestTreeAt(t *testing.T) {
	m := newWorkspace(t)

	got, err := m.TreeAt(context.Background(), "subdir", 1)
	if err != nil {
		t.Fatalf("TreeAt() error = %v", err)
	}
	want := "Listing files in the current working directory. (read-only) indicates read-only files. Max depth: 1.\n" +
		filepath.Join(m.WorkingDir(), "subdir") + "/\n" +
		"|-- subfile1.txt"
	if got != want {
		t.Errorf("TreeAt() =\n%s\nwant\n%s", got, want)
	}
}

func TestTreeAtRoot(t *testing.T) {
	m := newWorkspace(t)

	fromDot, err := m.TreeAt(context.Background(), ".", 2)
	if err != nil {
		t.Fatalf("TreeAt(.) error = %v", err)
	}
	full, err := m.DisplayFiles(context.Background())
	if err != nil {
		t.Fatalf("DisplayFiles() error = %v", err)
	}
	if fromDot != full {
		t.Errorf("TreeAt(.) = %q, want %q", fromDot, full)
	}
}

func TestTreeAtNotDirectory(t *testing.T) {
	m := newWorkspace(t)

	if _, err := m.TreeAt(context.Background(), "file1.txt", 1); err == nil {
		t.Error("TreeAt(file1.txt) error = nil, want error")
	}
	if _, err := m.TreeAt(context.Background(), "../outside", 1); err == nil {
		t.Error("TreeAt(../outside) error = nil, want error")
	}
}

func TestTreeInvalidDepth(t *testing.T) {
	m := newWorkspace(t)

	if _, err := m.Tree(context.Background(), 0); err == nil {
		t.Error("Tree(0) error = nil, want error")
	}
}
