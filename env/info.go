package env

import (
	"github.com/jonwraymond/toolfoundation/model"

	"github.com/jonwraymond/debuggym/gym"
	"github.com/jonwraymond/debuggym/textutil"
	"github.com/jonwraymond/debuggym/toolbox"
)

// EnvInfo is the snapshot Step and Reset hand back to the agent. It is
// rebuilt from scratch on every call; callers own it and the engine never
// mutates a returned snapshot.
type EnvInfo struct {
	// StepObservation is what the action produced: the tool's observation,
	// or the engine's account of why the action could not run.
	StepObservation gym.Observation `json:"step_observation"`

	// AllObservations lists every observation accumulated during the call,
	// starting with StepObservation, followed by observations from drained
	// events in queue order.
	AllObservations []gym.Observation `json:"all_observations"`

	// EvalObservation reports the most recent evaluation output.
	EvalObservation gym.Observation `json:"eval_observation"`

	// DirTree is the rendered working directory listing.
	DirTree string `json:"dir_tree"`

	// CurrentBreakpoints renders the breakpoint table, one
	// "line <N> in <file>" per entry, or the no-breakpoints sentinel.
	CurrentBreakpoints string `json:"current_breakpoints"`

	// Action echoes the ToolCall that produced this snapshot; nil on
	// Reset.
	Action *toolbox.ToolCall `json:"action"`

	// Instructions is the task statement, verbatim from Options.
	Instructions map[string]any `json:"instructions"`

	Score          int  `json:"score"`
	MaxScore       int  `json:"max_score"`
	Done           bool `json:"done"`
	RewriteCounter int  `json:"rewrite_counter"`

	// Tools describes the registered tools as MCP tool definitions.
	Tools []model.Tool `json:"tools"`
}

// ScoreFunc maps the latest evaluation to a score. maxScore is the value
// at which the task counts as solved; implementations must stay within
// [0, maxScore].
type ScoreFunc func(out gym.EvalOutput, maxScore int) int

// DefaultScore awards the full score on a successful evaluation and zero
// otherwise.
func DefaultScore(out gym.EvalOutput, maxScore int) int {
	if out.Success {
		return maxScore
	}
	return 0
}

// PytestScore counts passed test cases in the evaluation output, capped at
// maxScore. Pair it with a MaxScore set to the suite's collected count.
func PytestScore(out gym.EvalOutput, maxScore int) int {
	score := textutil.PytestScore(out.Output)
	if score > maxScore {
		return maxScore
	}
	return score
}
