package gym

import "fmt"

// Observation is a sourced text result produced by a tool, the environment,
// or an event handler. Observations are immutable value types; callers
// compare them by equality.
type Observation struct {
	// Source names the tool or subsystem that produced the observation,
	// e.g. "rewrite", "pdb", "env".
	Source string `json:"source"`

	// Observation is the text shown to the agent.
	Observation string `json:"observation"`
}

// Obs builds an Observation. Shorthand for struct literals in call-heavy
// code paths.
func Obs(source, text string) Observation {
	return Observation{Source: source, Observation: text}
}

// IsZero reports whether the observation carries no content. Handlers
// return a zero Observation to contribute nothing to the fan-out result.
func (o Observation) IsZero() bool {
	return o.Source == "" && o.Observation == ""
}

func (o Observation) String() string {
	return fmt.Sprintf("[%s] %s", o.Source, o.Observation)
}

// EvalOutput is the outcome of one evaluation run: whether the entrypoint
// reported success, and its captured output. Produced once per evaluation.
type EvalOutput struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
}
