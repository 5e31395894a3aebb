package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/mb0/glob"
	"github.com/rs/zerolog"
)

var (
	// ErrNotSetup reports use of a workspace before Setup succeeded.
	ErrNotSetup = errors.New("workspace not set up")

	// ErrPathEscapes reports a path that resolves outside the working
	// directory.
	ErrPathEscapes = errors.New("path escapes the working directory")
)

const (
	// DefaultTreeDepth bounds directory listings when no depth is given.
	DefaultTreeDepth = 2

	// ReadOnlyFile names the optional file in the source root carrying
	// extra protected path patterns, one per line.
	ReadOnlyFile = ".debugreadonly"

	dirPrefix = "RepoEnv-"
)

var (
	liveMu sync.Mutex
	live   = make(map[*Manager]struct{})
)

// ReleaseAll cleans up every workspace still alive in this process. Meant
// for signal handlers and other last resort paths.
func ReleaseAll() {
	liveMu.Lock()
	managers := make([]*Manager, 0, len(live))
	for m := range live {
		managers = append(managers, m)
	}
	liveMu.Unlock()

	for _, m := range managers {
		_ = m.Cleanup()
	}
}

// Manager owns one ephemeral working directory: an isolated copy of a
// source tree the agent may mutate, backed by a git snapshot for restore
// and diff duty.
//
// Contract:
//   - Concurrency: not safe for concurrent use; the environment serializes
//     access.
//   - Errors: methods return ErrNotSetup before Setup succeeded. Cleanup
//     is idempotent.
//   - Ownership: the ephemeral directory belongs to the Manager; callers
//     must not remove it. The source tree is never written to.
type Manager struct {
	source   string
	dir      string
	readonly []string
	depth    int
	logger   zerolog.Logger
	git      gitRunner
	setup    bool
	closed   bool
	release  runtime.Cleanup
}

// Option adjusts Manager construction.
type Option func(*Manager)

// WithTreeDepth sets the depth used by DisplayFiles.
func WithTreeDepth(depth int) Option {
	return func(m *Manager) { m.depth = depth }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// New builds an empty Manager. Call Setup before anything else.
func New(opts ...Option) *Manager {
	m := &Manager{depth: DefaultTreeDepth, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Setup copies the source tree at srcPath into a fresh ephemeral directory
// and snapshots it. readonly patterns are recorded for IsProtected, along
// with any patterns listed in the tree's ReadOnlyFile. An empty srcPath
// skips isolation entirely: no directory is created and restore, patch and
// novel file queries become no-ops.
func (m *Manager) Setup(ctx context.Context, srcPath string, readonly []string) error {
	if m.setup {
		return errors.New("workspace already set up")
	}
	m.setup = true
	m.readonly = append(m.readonly, readonly...)
	if srcPath == "" {
		return nil
	}

	source, err := filepath.Abs(srcPath)
	if err != nil {
		return fmt.Errorf("resolve source %q: %w", srcPath, err)
	}
	dir, err := os.MkdirTemp("", dirPrefix)
	if err != nil {
		return fmt.Errorf("create working directory: %w", err)
	}
	m.source = source
	m.dir = dir
	m.git = gitRunner{dir: dir, logger: m.logger}

	if err := copyTree(source, dir); err != nil {
		os.RemoveAll(dir)
		m.dir = ""
		return fmt.Errorf("copy source tree: %w", err)
	}
	if patterns, err := readPatternFile(filepath.Join(dir, ReadOnlyFile)); err == nil {
		m.readonly = append(m.readonly, patterns...)
	}
	if err := m.git.snapshot(ctx); err != nil {
		os.RemoveAll(dir)
		m.dir = ""
		return err
	}

	liveMu.Lock()
	live[m] = struct{}{}
	liveMu.Unlock()
	// Last resort reclamation if the Manager is collected without Cleanup.
	m.release = runtime.AddCleanup(m, func(dir string) { os.RemoveAll(dir) }, dir)

	m.logger.Debug().Str("source", source).Str("dir", dir).Msg("workspace ready")
	return nil
}

// Source reports the original tree the workspace was copied from.
func (m *Manager) Source() string { return m.source }

// WorkingDir reports the ephemeral directory, empty when isolation was
// skipped.
func (m *Manager) WorkingDir() string { return m.dir }

// Restore reverts every file in the working directory to its snapshot
// content. Files created after setup survive. Idempotent.
func (m *Manager) Restore(ctx context.Context) error {
	if !m.setup {
		return ErrNotSetup
	}
	if m.dir == "" {
		return nil
	}
	return m.git.restore(ctx)
}

// Patch renders the working directory's drift from the pristine snapshot
// as a unified diff in a/ b/ form, empty when nothing changed. Novel files
// appear as additions.
func (m *Manager) Patch(ctx context.Context) (string, error) {
	if !m.setup {
		return "", ErrNotSetup
	}
	if m.dir == "" {
		return "", nil
	}
	return m.git.diffSnapshot(ctx)
}

// NovelFiles lists relative paths present in the working directory but not
// in the pristine snapshot.
func (m *Manager) NovelFiles(ctx context.Context) ([]string, error) {
	if !m.setup {
		return nil, ErrNotSetup
	}
	if m.dir == "" {
		return nil, nil
	}
	return m.git.untracked(ctx)
}

// IsProtected reports whether the agent may not modify rel: either it
// matches a readonly pattern or it is novel content outside the snapshot.
func (m *Manager) IsProtected(ctx context.Context, rel string) (bool, error) {
	if m.matchesReadOnly(rel) {
		return true, nil
	}
	if m.dir == "" {
		return false, nil
	}
	novel, err := m.NovelFiles(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(novel, filepath.ToSlash(rel)), nil
}

// matchesReadOnly checks rel against the recorded patterns: trailing slash
// patterns protect whole directories, other patterns match the full
// relative path as well as the bare file name.
func (m *Manager) matchesReadOnly(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range m.readonly {
		if dir, ok := strings.CutSuffix(pattern, "/"); ok {
			if rel == dir || strings.HasPrefix(rel, dir+"/") || strings.Contains(rel, "/"+dir+"/") {
				return true
			}
			continue
		}
		if ok, err := glob.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := glob.Match(pattern, path.Base(rel)); err == nil && ok {
			return true
		}
	}
	return false
}

// Abs resolves rel inside the working directory, rejecting anything that
// escapes it.
func (m *Manager) Abs(rel string) (string, error) {
	if !m.setup || m.dir == "" {
		return "", ErrNotSetup
	}
	p := rel
	if !filepath.IsAbs(p) {
		p = filepath.Join(m.dir, p)
	}
	p = filepath.Clean(p)
	r, err := filepath.Rel(m.dir, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, rel)
	}
	return p, nil
}

// ReadFile reads rel from the working directory.
func (m *Manager) ReadFile(rel string) ([]byte, error) {
	p, err := m.Abs(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// WriteFile writes rel inside the working directory, creating parent
// directories as needed.
func (m *Manager) WriteFile(rel string, data []byte) error {
	p, err := m.Abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// Cleanup removes the ephemeral directory. Safe to call more than once.
func (m *Manager) Cleanup() error {
	if m.closed {
		return nil
	}
	m.closed = true

	liveMu.Lock()
	delete(live, m)
	liveMu.Unlock()

	if m.dir == "" {
		return nil
	}
	m.release.Stop()
	m.logger.Debug().Str("dir", m.dir).Msg("workspace released")
	return os.RemoveAll(m.dir)
}

// copyTree copies src into dst, preserving file modes and symlinks. The
// top level .git directory is skipped so the snapshot repository is the
// only one in the copy.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if rel == ".git" && d.IsDir() {
			return filepath.SkipDir
		}
		target := filepath.Join(dst, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.Mkdir(target, 0o755)
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(p)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFile(p, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// readPatternFile loads protected path patterns, skipping blank lines and
// comments.
func readPatternFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}
