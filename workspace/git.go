package workspace

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// gitRunner shells out to git for snapshot, restore and diff duty inside
// one working directory.
type gitRunner struct {
	dir    string
	logger zerolog.Logger
}

func (g gitRunner) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	g.logger.Trace().Strs("args", args).Msg("git")
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// snapshot turns the working directory into a git repository with a single
// commit capturing the pristine content.
func (g gitRunner) snapshot(ctx context.Context) error {
	steps := [][]string{
		{"init", "-q"},
		{"add", "-A", "."},
		{"-c", "user.name=debug-gym", "-c", "user.email=debug-gym@localhost",
			"commit", "-q", "--allow-empty", "-m", "pristine snapshot"},
	}
	for _, args := range steps {
		if _, err := g.run(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// restore reverts every tracked file to the snapshot. Files unknown to the
// snapshot are left alone.
func (g gitRunner) restore(ctx context.Context) error {
	_, err := g.run(ctx, "checkout", "-q", "--", ".")
	return err
}

// untracked lists files absent from the snapshot as relative paths in
// porcelain order.
func (g gitRunner) untracked(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "status", "--porcelain", "-uall")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		name, ok := strings.CutPrefix(line, "?? ")
		if !ok {
			continue
		}
		if strings.HasPrefix(name, `"`) {
			if unquoted, err := strconv.Unquote(name); err == nil {
				name = unquoted
			}
		}
		files = append(files, name)
	}
	return files, nil
}

// diffSnapshot renders the working tree's drift from the snapshot commit
// as a unified diff. Novel files are staged first so they show up as
// additions, then the index is reset so status queries keep seeing them as
// untracked.
func (g gitRunner) diffSnapshot(ctx context.Context) (string, error) {
	if _, err := g.run(ctx, "add", "-A", "."); err != nil {
		return "", err
	}
	out, diffErr := g.run(ctx, "diff", "--cached", "--no-color")
	if _, err := g.run(ctx, "reset", "-q"); err != nil && diffErr == nil {
		diffErr = err
	}
	if diffErr != nil {
		return "", diffErr
	}
	return out, nil
}
