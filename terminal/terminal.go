// Package terminal executes commands for the environment, on the host or
// inside a Docker container, under a wall clock timeout.
package terminal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonwraymond/debuggym/textutil"
)

// A Terminal runs shell commands in a fixed working directory.
//
// Contract:
//   - Concurrency: implementations are not safe for concurrent Run calls;
//     the environment serializes access.
//   - Errors: a command that starts and exits non-zero is not an error; Run
//     reports it through the success flag. Errors are reserved for commands
//     that cannot run at all and for deadline expiry, which satisfies
//     errors.Is(err, context.DeadlineExceeded).
//   - Ownership: the working directory belongs to the caller; Run never
//     creates or removes it.
type Terminal interface {
	// Run executes command through the shell and returns whether it exited
	// cleanly, together with its combined, whitespace trimmed output. A
	// timeout of zero or less adds no deadline beyond ctx's own.
	Run(ctx context.Context, command string, timeout time.Duration) (bool, string, error)

	// WorkingDir reports the directory commands run in.
	WorkingDir() string

	// SetWorkingDir points the terminal at a new working directory.
	SetWorkingDir(dir string)
}

type options struct {
	shell  string
	dir    string
	env    []string
	setup  []string
	logger zerolog.Logger
}

// Option adjusts terminal construction.
type Option func(*options)

// WithShell overrides the shell binary used to interpret commands.
func WithShell(shell string) Option {
	return func(o *options) { o.shell = shell }
}

// WithWorkingDir sets the initial working directory.
func WithWorkingDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithEnv appends KEY=VALUE pairs to the command environment.
func WithEnv(vars ...string) Option {
	return func(o *options) { o.env = append(o.env, vars...) }
}

// WithSessionCommands prepends commands chained in front of every Run, such
// as virtual environment activation.
func WithSessionCommands(cmds ...string) Option {
	return func(o *options) { o.setup = append(o.setup, cmds...) }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(opts []Option) options {
	o := options{
		shell:  "/bin/sh",
		env:    []string{"NO_COLOR=1", "PS1="},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Local runs commands directly on the host.
type Local struct {
	opts options
}

// NewLocal builds a host terminal.
func NewLocal(opts ...Option) *Local {
	return &Local{opts: newOptions(opts)}
}

// WorkingDir reports the directory commands run in.
func (l *Local) WorkingDir() string { return l.opts.dir }

// SetWorkingDir points the terminal at a new working directory.
func (l *Local) SetWorkingDir(dir string) { l.opts.dir = dir }

// Run executes command with the shell, combining stdout and stderr.
func (l *Local) Run(ctx context.Context, command string, timeout time.Duration) (bool, string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, l.opts.shell, "-c", chain(l.opts.setup, command))
	cmd.Dir = l.opts.dir
	cmd.Env = append(os.Environ(), l.opts.env...)

	l.opts.logger.Debug().Str("command", command).Str("dir", l.opts.dir).Msg("terminal run")
	return runCombined(ctx, cmd, command)
}

// chain joins the session commands and command into one shell line.
func chain(setup []string, command string) string {
	if len(setup) == 0 {
		return command
	}
	return strings.Join(append(slices.Clone(setup), command), " && ")
}

func runCombined(ctx context.Context, cmd *exec.Cmd, command string) (bool, string, error) {
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	// Unblocks Wait when a grandchild inherits the output pipe past the
	// deadline.
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, "", fmt.Errorf("run %q: %w", command, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, shape(out.String()), nil
		}
		return false, "", fmt.Errorf("run %q: %w", command, err)
	}
	return true, shape(out.String()), nil
}

// shape normalizes raw command output for observations.
func shape(s string) string {
	return strings.TrimSpace(textutil.StripANSI(s))
}
