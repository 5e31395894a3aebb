package toolbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/jonwraymond/debuggym/gym"
	"github.com/jonwraymond/debuggym/textutil"
)

// RewriteArgs are the rewrite tool's declared arguments.
type RewriteArgs struct {
	// Path is the workspace relative file to rewrite.
	Path string `mapstructure:"path"`

	// Start and End bound the line range to replace, 1-based and
	// inclusive. Start 0 replaces the whole file; End 0 means the single
	// line at Start.
	Start int `mapstructure:"start"`
	End   int `mapstructure:"end"`

	// NewCode is the replacement content. Literal \n sequences are
	// normalized to real newlines before writing.
	NewCode string `mapstructure:"new_code"`
}

// Rewrite replaces a whole file or a line range with new content and
// reports the resulting diff. Every attempt queues a rewrite_success or
// rewrite_fail event.
type Rewrite struct{}

// NewRewrite returns the rewrite tool.
func NewRewrite() *Rewrite { return &Rewrite{} }

func (*Rewrite) Kind() Kind   { return KindRewrite }
func (*Rewrite) Name() string { return "rewrite" }

func (*Rewrite) Description() string {
	return "Rewrite the content of a file, replacing either the whole file or the given 1-based inclusive line range."
}

func (*Rewrite) Arguments() map[string]ArgSpec {
	return map[string]ArgSpec{
		"path": {
			Type:        []string{"string"},
			Description: "Path of the file to rewrite, relative to the working directory.",
		},
		"start": {
			Type:        []string{"number"},
			Description: "First line to replace (1-based). Omit to replace the whole file.",
		},
		"end": {
			Type:        []string{"number"},
			Description: "Last line to replace (1-based, inclusive). Omit to replace the single line at start.",
		},
		"new_code": {
			Type:        []string{"string"},
			Description: "The replacement code.",
		},
	}
}

func (r *Rewrite) Use(ctx context.Context, env Environment, args map[string]any) (gym.Observation, error) {
	var in RewriteArgs
	if err := DecodeArgs(args, &in); err != nil {
		return r.fail(env, fmt.Sprintf("Invalid arguments: %v.\nRewrite failed.", err)), nil
	}
	if in.Path == "" {
		return r.fail(env, "File path is None. Please provide a valid file path.\nRewrite failed."), nil
	}

	protected, err := env.IsProtected(ctx, in.Path)
	if err != nil {
		return gym.Observation{}, &ToolError{Tool: r.Name(), Op: "check protection", Err: err}
	}
	if protected {
		return r.fail(env, fmt.Sprintf("The file `%s` is read-only, it is not editable.\nRewrite failed.", in.Path)), nil
	}

	original, err := env.ReadFile(in.Path)
	if err != nil {
		return r.fail(env, fmt.Sprintf("The file `%s` does not exist or is not in the current repository.\nRewrite failed.", in.Path)), nil
	}

	updated, ok := spliceLines(original, in.Start, in.End, textutil.CleanCode(in.NewCode))
	if !ok {
		return r.fail(env, fmt.Sprintf("Invalid line range %d:%d.\nRewrite failed.", in.Start, in.End)), nil
	}
	if err := env.WriteFile(in.Path, updated); err != nil {
		return gym.Observation{}, &ToolError{Tool: r.Name(), Op: "write", Err: err}
	}

	diff, err := unifiedDiff(original, updated)
	if err != nil {
		return gym.Observation{}, &ToolError{Tool: r.Name(), Op: "diff", Err: err}
	}
	env.QueueEvent(gym.RewriteSuccess, r.Name(), map[string]any{"path": in.Path})
	text := fmt.Sprintf("The file `%s` has been updated successfully.\n\nDiff:\n\n%s", in.Path, diff)
	return gym.Obs(r.Name(), text), nil
}

// fail queues the rewrite_fail event and wraps text as the step
// observation.
func (r *Rewrite) fail(env Environment, text string) gym.Observation {
	env.QueueEvent(gym.RewriteFail, r.Name(), map[string]any{"reason": text})
	return gym.Obs(r.Name(), text)
}

// spliceLines replaces lines start through end (1-based, inclusive) of
// content with replacement. start 0 replaces the whole content; end 0
// means the single line at start. ok is false when the range does not
// address content.
func spliceLines(content string, start, end int, replacement string) (updated string, ok bool) {
	if start == 0 {
		return replacement, true
	}
	lines := strings.Split(content, "\n")
	if end == 0 {
		end = start
	}
	if start < 1 || end < start || start > len(lines) {
		return "", false
	}
	if end > len(lines) {
		end = len(lines)
	}

	merged := make([]string, 0, len(lines))
	merged = append(merged, lines[:start-1]...)
	if replacement != "" {
		merged = append(merged, strings.Split(replacement, "\n")...)
	}
	merged = append(merged, lines[end:]...)
	return strings.Join(merged, "\n"), true
}

// unifiedDiff renders the original/current diff shown in rewrite
// observations.
func unifiedDiff(original, current string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        diffLines(original),
		B:        diffLines(current),
		FromFile: "original",
		ToFile:   "current",
		Context:  3,
	})
}

// diffLines splits content into lines that keep their trailing newline.
// Empty content yields no lines at all, so a creation diff reads
// "@@ -0,0 +N @@".
func diffLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
