// Package history records the per-step trajectory of an episode: which
// action ran, what it observed and how the score moved. Agents keep a
// Tracker next to the environment, push one Record per step and read a
// bounded window back when building their next prompt. The full
// trajectory feeds the run log.
package history

import (
	"github.com/huandu/go-clone"

	"github.com/jonwraymond/debuggym/env"
	"github.com/jonwraymond/debuggym/toolbox"
)

// PromptResponse is one model exchange behind a step.
type PromptResponse struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// Record is one step of an episode. StepID is assigned by the Tracker;
// the zero Record with Action nil reads as a reset.
type Record struct {
	StepID      int               `json:"step_id"`
	Action      *toolbox.ToolCall `json:"action"`
	Observation string            `json:"obs"`
	Score       int               `json:"score"`
	Done        bool              `json:"done"`

	// TokenUsage is the model tokens the step consumed, when the caller
	// meters them.
	TokenUsage int `json:"token_usage,omitempty"`

	// PromptResponses are the model exchanges that produced the step's
	// action, attached after the fact via AttachPromptResponses.
	PromptResponses []PromptResponse `json:"prompt_response_pairs,omitempty"`
}

// Clone returns a deep copy of the record, including the action's
// argument map.
func (r Record) Clone() Record {
	return clone.Clone(r).(Record)
}

// FromInfo builds the record for one environment snapshot. StepID is left
// for the Tracker to assign.
func FromInfo(info env.EnvInfo) Record {
	return Record{
		Action:      info.Action,
		Observation: info.StepObservation.Observation,
		Score:       info.Score,
		Done:        info.Done,
	}
}

// Tracker accumulates Records in step order. Records are deep-copied on
// the way in, so callers may keep mutating the action they passed.
//
// Not safe for concurrent use.
type Tracker struct {
	window  int
	records []Record
}

// New returns an empty tracker. window bounds Recent; a window below 1
// makes Recent return the full trajectory.
func New(window int) *Tracker {
	return &Tracker{window: window}
}

// Step appends a record and returns its assigned step id.
func (t *Tracker) Step(rec Record) int {
	rec = rec.Clone()
	rec.StepID = len(t.records)
	t.records = append(t.records, rec)
	return rec.StepID
}

// AttachPromptResponses adds model exchanges to the most recent record.
// It does nothing on an empty tracker.
func (t *Tracker) AttachPromptResponses(pairs ...PromptResponse) {
	if len(t.records) == 0 {
		return
	}
	last := &t.records[len(t.records)-1]
	last.PromptResponses = append(last.PromptResponses, pairs...)
}

// Len returns the number of recorded steps.
func (t *Tracker) Len() int { return len(t.records) }

// Recent returns the last window records in step order.
func (t *Tracker) Recent() []Record {
	start := 0
	if t.window > 0 && len(t.records) > t.window {
		start = len(t.records) - t.window
	}
	out := make([]Record, len(t.records)-start)
	copy(out, t.records[start:])
	return out
}

// All returns every record in step order.
func (t *Tracker) All() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// At returns the record with the given step id.
func (t *Tracker) At(stepID int) (Record, bool) {
	if stepID < 0 || stepID >= len(t.records) {
		return Record{}, false
	}
	return t.records[stepID], true
}

// Last returns the most recent record.
func (t *Tracker) Last() (Record, bool) {
	if len(t.records) == 0 {
		return Record{}, false
	}
	return t.records[len(t.records)-1], true
}

// Score returns the sum of all recorded step scores.
func (t *Tracker) Score() int {
	total := 0
	for _, rec := range t.records {
		total += rec.Score
	}
	return total
}

// Reset drops every record.
func (t *Tracker) Reset() {
	t.records = nil
}
