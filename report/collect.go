// Package report aggregates run-log directories into per-run success
// rates and renders the performance table. The expected layout is
// <base>/<model>/<run>/<task>/ with one debug_gym.jsonl per task; a
// <base>/<run>/<task>/ layout is picked up as a single unnamed run.
package report

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/jonwraymond/debuggym/runlog"
)

// minTaskFiles is the number of files a task directory must hold before
// it counts: fewer means the run died before writing its artifacts.
const minTaskFiles = 3

// RunStats aggregates the task outcomes of one run directory.
type RunStats struct {
	Model     string
	Run       string
	AgentType string

	Total      int
	Successful int
}

// Key returns the "model/run" label the run is reported under.
func (s RunStats) Key() string {
	if s.Run == "" {
		return s.Model
	}
	return s.Model + "/" + s.Run
}

// Rate returns the success percentage.
func (s RunStats) Rate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Total) * 100
}

// Collect scans base for run directories and aggregates their task
// outcomes. Unreadable or malformed entries are logged and skipped,
// never fatal; only an unreadable base is an error. Results are ordered
// by model name, then by the canonical agent order.
func Collect(base string, logger zerolog.Logger) ([]RunStats, error) {
	models, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", base, err)
	}

	var stats []RunStats
	for _, model := range models {
		if !model.IsDir() {
			continue
		}
		modelPath := filepath.Join(base, model.Name())
		runs, err := os.ReadDir(modelPath)
		if err != nil {
			logger.Warn().Err(err).Str("model", model.Name()).Msg("skipping unreadable model dir")
			continue
		}

		var found []RunStats
		for _, run := range runs {
			if !run.IsDir() {
				continue
			}
			s := analyzeRun(filepath.Join(modelPath, run.Name()), logger)
			if s.Total == 0 {
				continue
			}
			s.Model, s.Run = model.Name(), run.Name()
			found = append(found, s)
		}
		if len(found) == 0 {
			// No nested runs; the model dir may itself be a run.
			if s := analyzeRun(modelPath, logger); s.Total > 0 {
				s.Model = model.Name()
				found = []RunStats{s}
			}
		}
		stats = append(stats, found...)
	}

	sortStats(stats)
	return stats, nil
}

// analyzeRun walks dir and aggregates every task directory below it. A
// directory is a run only when a subdirectory holds a run log; this keeps
// a bare task directory from being promoted to a run of its own.
func analyzeRun(dir string, logger zerolog.Logger) RunStats {
	if !hasTaskDirs(dir) {
		return RunStats{}
	}

	var s RunStats
	agentExtracted := false
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		logPath := filepath.Join(path, runlog.LogFile)
		if _, err := os.Stat(logPath); err != nil {
			return nil
		}
		if countFiles(path) < minTaskFiles {
			return nil
		}
		if !agentExtracted {
			s.AgentType = agentType(logPath)
			agentExtracted = true
		}
		l, err := runlog.Load(logPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", logPath).Msg("skipping malformed run log")
			return nil
		}
		s.Total++
		if l.Success {
			s.Successful++
		}
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("run walk aborted")
	}
	return s
}

// hasTaskDirs reports whether any subdirectory of dir holds a run log.
func hasTaskDirs(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		found := false
		_ = filepath.WalkDir(filepath.Join(dir, e.Name()), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() && d.Name() == runlog.LogFile {
				found = true
				return fs.SkipAll
			}
			return nil
		})
		if found {
			return true
		}
	}
	return false
}

func countFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n
}

// agentType reads the agent label from a run log, falling back to
// "Unknown" for unreadable logs or logs without one.
func agentType(path string) string {
	l, err := runlog.Load(path)
	if err != nil || l.Config.AgentType == "" {
		return "Unknown"
	}
	return l.Config.AgentType
}

// agentOrder is the canonical report order; agents outside it sort last.
var agentOrder = []string{"rewrite_agent", "debug_agent", "debug_5_agent"}

func agentRank(agent string) int {
	for i, a := range agentOrder {
		if a == agent {
			return i
		}
	}
	return len(agentOrder)
}

func sortStats(stats []RunStats) {
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Model != stats[j].Model {
			return stats[i].Model < stats[j].Model
		}
		return agentRank(stats[i].AgentType) < agentRank(stats[j].AgentType)
	})
}
