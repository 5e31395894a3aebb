package env

import (
	"errors"
	"testing"

	"github.com/jonwraymond/debuggym/gym"
	"github.com/jonwraymond/debuggym/terminal"
	"github.com/jonwraymond/debuggym/toolbox"
)

func TestEnvironmentContract(t *testing.T) {
	var _ gym.Environment = (*RepoEnv)(nil)
	var _ toolbox.Environment = (*RepoEnv)(nil)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{
			name: "negative tree depth",
			opts: Options{DirTreeDepth: -1},
			want: ErrBadTreeDepth,
		},
		{
			name: "negative max score",
			opts: Options{MaxScore: -1},
			want: ErrBadMaxScore,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	e, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })

	if e.opts.DirTreeDepth != DefaultDirTreeDepth {
		t.Errorf("DirTreeDepth = %d, want %d", e.opts.DirTreeDepth, DefaultDirTreeDepth)
	}
	if e.opts.RunTimeout != DefaultRunTimeout {
		t.Errorf("RunTimeout = %v, want %v", e.opts.RunTimeout, DefaultRunTimeout)
	}
	if e.opts.MaxScore != DefaultMaxScore {
		t.Errorf("MaxScore = %d, want %d", e.opts.MaxScore, DefaultMaxScore)
	}
	if e.opts.Score == nil {
		t.Error("Score = nil, want DefaultScore")
	}
	if e.opts.Instructions == nil {
		t.Error("Instructions = nil, want empty map")
	}
	if _, ok := e.Terminal().(*terminal.Local); !ok {
		t.Errorf("Terminal() = %T, want *terminal.Local", e.Terminal())
	}
}
