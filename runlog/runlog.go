// Package runlog persists the artifacts of one episode: an indented JSON
// run log, a human readable transcript, and the final workspace patch,
// laid out as <base>/<model>/<run>/<task>/debug_gym.jsonl so the report
// and viewer commands can find them.
package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jonwraymond/debuggym/history"
)

// Artifact names inside a task directory.
const (
	LogFile     = "debug_gym.jsonl"
	PatchFile   = "debug_gym.patch"
	SessionFile = "debug_gym.log"
)

// Config describes the run enough for reports to group it.
type Config struct {
	// AgentType labels the policy that produced the run, e.g.
	// "rewrite_agent" or "debug_agent".
	AgentType string `json:"agent_type"`

	MaxSteps   int      `json:"max_steps,omitempty"`
	RandomSeed uint64   `json:"random_seed,omitempty"`
	Entrypoint string   `json:"entrypoint,omitempty"`
	Tools      []string `json:"tools,omitempty"`
}

// RunLog is the persisted record of one episode.
type RunLog struct {
	Problem string           `json:"problem"`
	Config  Config           `json:"config"`
	UUID    string           `json:"uuid"`
	Success bool             `json:"success"`
	Log     []history.Record `json:"log"`
}

// New returns a run log for the given task with a fresh UUID.
func New(problem string, cfg Config) *RunLog {
	return &RunLog{
		Problem: problem,
		Config:  cfg,
		UUID:    uuid.NewString(),
		Log:     []history.Record{},
	}
}

// Save writes the run log as indented JSON to dir/debug_gym.jsonl,
// creating dir as needed.
func (l *RunLog) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	data, err := json.MarshalIndent(l, "", "    ")
	if err != nil {
		return fmt.Errorf("encode run log: %w", err)
	}
	path := filepath.Join(dir, LogFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	return nil
}

// SavePatch writes the workspace patch to dir/debug_gym.patch, creating
// dir as needed.
func SavePatch(dir, patch string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	path := filepath.Join(dir, PatchFile)
	if err := os.WriteFile(path, []byte(patch), 0o644); err != nil {
		return fmt.Errorf("write patch: %w", err)
	}
	return nil
}

// SaveSession writes a human readable transcript of the records to
// dir/debug_gym.log, creating dir as needed.
func SaveSession(dir string, records []history.Record) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	var b strings.Builder
	for _, rec := range records {
		name := "reset"
		if rec.Action != nil {
			name = rec.Action.Name
		}
		fmt.Fprintf(&b, "[%d] %s score=%d done=%v\n", rec.StepID, name, rec.Score, rec.Done)
		if rec.Observation != "" {
			fmt.Fprintln(&b, rec.Observation)
		}
		b.WriteString("\n")
	}
	path := filepath.Join(dir, SessionFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write session log: %w", err)
	}
	return nil
}

// Load reads the run log at path.
func Load(path string) (RunLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunLog{}, fmt.Errorf("read run log: %w", err)
	}
	var l RunLog
	if err := json.Unmarshal(data, &l); err != nil {
		return RunLog{}, fmt.Errorf("decode run log %s: %w", path, err)
	}
	return l, nil
}
