package workspace

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DisplayFiles renders the working directory listing at the configured
// depth, annotating read-only files.
func (m *Manager) DisplayFiles(ctx context.Context) (string, error) {
	return m.Tree(ctx, m.depth)
}

// Tree renders the working directory as an indented listing down to depth
// levels. Directories carry a trailing slash, protected files a read-only
// marker. Dot entries stay hidden.
func (m *Manager) Tree(ctx context.Context, depth int) (string, error) {
	if !m.setup || m.dir == "" {
		return "", ErrNotSetup
	}
	if depth < 1 {
		return "", fmt.Errorf("tree depth must be positive, got %d", depth)
	}

	novel := make(map[string]bool)
	files, err := m.NovelFiles(ctx)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		novel[f] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Listing files in the current working directory. (read-only) indicates read-only files. Max depth: %d.\n", depth)
	b.WriteString(m.dir + "/")
	if err := m.walkTree(&b, m.dir, "", 1, depth, novel); err != nil {
		return "", err
	}
	return b.String(), nil
}

// TreeAt renders the listing rooted at the workspace-relative directory rel
// instead of the working directory itself. rel "" or "." is the full tree.
func (m *Manager) TreeAt(ctx context.Context, rel string, depth int) (string, error) {
	if rel == "" || rel == "." {
		return m.Tree(ctx, depth)
	}
	if !m.setup || m.dir == "" {
		return "", ErrNotSetup
	}
	if depth < 1 {
		return "", fmt.Errorf("tree depth must be positive, got %d", depth)
	}
	root, err := m.Abs(rel)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", rel)
	}

	novel := make(map[string]bool)
	files, err := m.NovelFiles(ctx)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		novel[f] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Listing files in the current working directory. (read-only) indicates read-only files. Max depth: %d.\n", depth)
	b.WriteString(root + "/")
	if err := m.walkTree(&b, root, path.Clean(filepath.ToSlash(rel)), 1, depth, novel); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (m *Manager) walkTree(b *strings.Builder, dir, rel string, level, depth int, novel map[string]bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", level-1)
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		entryRel := path.Join(rel, name)
		if entry.IsDir() {
			fmt.Fprintf(b, "\n%s|-- %s/", indent, name)
			if level < depth {
				if err := m.walkTree(b, filepath.Join(dir, name), entryRel, level+1, depth, novel); err != nil {
					return err
				}
			}
			continue
		}
		fmt.Fprintf(b, "\n%s|-- %s", indent, name)
		if novel[entryRel] || m.matchesReadOnly(entryRel) {
			b.WriteString(" (read-only)")
		}
	}
	return nil
}
