package workspace

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// sampleSource builds the canonical fixture tree: two empty files at the
// root and one in a subdirectory.
func sampleSource(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	writeFile(t, src, "file1.txt", "")
	writeFile(t, src, "file2.txt", "")
	writeFile(t, src, filepath.Join("subdir", "subfile1.txt"), "")
	return src
}

func newWorkspace(t *testing.T, readonly ...string) *Manager {
	t.Helper()
	requireGit(t)
	m := New()
	if err := m.Setup(context.Background(), sampleSource(t), readonly); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	t.Cleanup(func() { _ = m.Cleanup() })
	return m
}
