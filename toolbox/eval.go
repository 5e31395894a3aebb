package toolbox

import (
	"context"

	"github.com/jonwraymond/debuggym/gym"
)

// Eval triggers an evaluation run on demand. The environment retains the
// outcome, so the score reported after the step reflects this run.
type Eval struct{}

// NewEval returns the eval tool.
func NewEval() *Eval { return &Eval{} }

func (*Eval) Kind() Kind   { return KindEval }
func (*Eval) Name() string { return "eval" }

func (*Eval) Description() string {
	return "Run the task entrypoint and report its output."
}

func (*Eval) Arguments() map[string]ArgSpec {
	return map[string]ArgSpec{}
}

func (e *Eval) Use(ctx context.Context, env Environment, _ map[string]any) (gym.Observation, error) {
	out, err := env.Eval(ctx)
	if err != nil {
		return gym.Observation{}, &ToolError{Tool: e.Name(), Op: "eval", Err: err}
	}
	return gym.Obs(e.Name(), out.Output), nil
}
