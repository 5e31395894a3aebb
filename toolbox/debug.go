package toolbox

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonwraymond/debuggym/gym"
	"github.com/jonwraymond/debuggym/textutil"
)

// DebugArgs are the debug tool's declared arguments.
type DebugArgs struct {
	Command string `mapstructure:"command"`
}

// Debug keeps the live breakpoint table through pdb style commands:
//
//	b <file>:<line>   set a breakpoint
//	cl <file>:<line>  clear one breakpoint
//	cl                clear every breakpoint
//	b                 list current breakpoints
//
// The engine adopts the table after every invocation and the tool drops
// it on env_reset.
type Debug struct {
	breakpoints map[string]string
}

// NewDebug returns the debug tool with an empty breakpoint table.
func NewDebug() *Debug {
	return &Debug{breakpoints: make(map[string]string)}
}

func (*Debug) Kind() Kind   { return KindDebugger }
func (*Debug) Name() string { return "debug" }

func (*Debug) Description() string {
	return "Manage debugger breakpoints: `b <file>:<line>` sets one, `cl <file>:<line>` clears one, `cl` clears all, `b` lists them."
}

func (*Debug) Arguments() map[string]ArgSpec {
	return map[string]ArgSpec{
		"command": {
			Type:        []string{"string"},
			Description: "The breakpoint command to run.",
		},
	}
}

func (d *Debug) Use(ctx context.Context, env Environment, args map[string]any) (gym.Observation, error) {
	var in DebugArgs
	if err := DecodeArgs(args, &in); err != nil {
		return gym.Obs(d.Name(), fmt.Sprintf("Invalid arguments: %v.", err)), nil
	}

	command := strings.TrimSpace(in.Command)
	switch {
	case command == "":
		return gym.Obs(d.Name(), "Empty command. Supported commands: `b <file>:<line>`, `cl <file>:<line>`, `cl`, `b`."), nil

	case command == "b":
		return gym.Obs(d.Name(), textutil.FormatBreakpoints(d.breakpoints)), nil

	case command == "cl":
		d.breakpoints = make(map[string]string)
		return gym.Obs(d.Name(), "All breakpoints have been cleared."), nil

	case strings.HasPrefix(command, "b "):
		path, line, ok := parseLocation(strings.TrimPrefix(command, "b "))
		if !ok {
			return gym.Obs(d.Name(), fmt.Sprintf("Invalid breakpoint location in `%s`. Use `b <file>:<line>`.", command)), nil
		}
		if _, err := env.ReadFile(path); err != nil {
			return gym.Obs(d.Name(), fmt.Sprintf("The file `%s` does not exist or is not in the current repository.", path)), nil
		}
		d.breakpoints[textutil.BreakpointKey(path, line)] = fmt.Sprintf("b %s:%d", path, line)
		return gym.Obs(d.Name(), fmt.Sprintf("Breakpoint set at line %d in %s.", line, path)), nil

	case strings.HasPrefix(command, "cl "):
		path, line, ok := parseLocation(strings.TrimPrefix(command, "cl "))
		if !ok {
			return gym.Obs(d.Name(), fmt.Sprintf("Invalid breakpoint location in `%s`. Use `cl <file>:<line>`.", command)), nil
		}
		key := textutil.BreakpointKey(path, line)
		if _, exists := d.breakpoints[key]; !exists {
			return gym.Obs(d.Name(), fmt.Sprintf("There is no breakpoint at line %d in %s.", line, path)), nil
		}
		delete(d.breakpoints, key)
		return gym.Obs(d.Name(), fmt.Sprintf("Breakpoint cleared at line %d in %s.", line, path)), nil

	default:
		return gym.Obs(d.Name(), fmt.Sprintf("Unsupported command `%s`. Supported commands: `b <file>:<line>`, `cl <file>:<line>`, `cl`, `b`.", command)), nil
	}
}

// CurrentBreakpoints returns a snapshot of the live table.
func (d *Debug) CurrentBreakpoints() map[string]string {
	out := make(map[string]string, len(d.breakpoints))
	for k, v := range d.breakpoints {
		out[k] = v
	}
	return out
}

// OnEnvReset drops every breakpoint.
func (d *Debug) OnEnvReset(ctx context.Context, n gym.Notification) (gym.Observation, error) {
	d.breakpoints = make(map[string]string)
	return gym.Observation{}, nil
}

// parseLocation splits "<file>:<line>" into its parts. ok is false when
// the line is missing or not a positive integer.
func parseLocation(s string) (path string, line int, ok bool) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return s[:i], n, true
}
