package toolbox

import (
	"context"
	"fmt"

	"github.com/jonwraymond/debuggym/gym"
)

// ListDirArgs are the listdir tool's declared arguments.
type ListDirArgs struct {
	// Path scopes the listing to a subdirectory. Defaults to the working
	// directory itself.
	Path string `mapstructure:"path"`

	// Depth bounds the listing. 0 means the environment's configured
	// tree depth.
	Depth int `mapstructure:"depth"`
}

// ListDir renders the working tree rooted at a relative path, annotating
// read only files.
type ListDir struct{}

// NewListDir returns the listdir tool.
func NewListDir() *ListDir { return &ListDir{} }

func (*ListDir) Kind() Kind   { return KindInspect }
func (*ListDir) Name() string { return "listdir" }

func (*ListDir) Description() string {
	return "List the files and subdirectories of a directory in the working tree."
}

func (*ListDir) Arguments() map[string]ArgSpec {
	return map[string]ArgSpec{
		"path": {
			Type:        []string{"string"},
			Description: "Directory to list, relative to the working directory. Defaults to the working directory.",
		},
		"depth": {
			Type:        []string{"number"},
			Description: "Maximum depth to descend. Defaults to the environment's tree depth.",
		},
	}
}

func (l *ListDir) Use(ctx context.Context, env Environment, args map[string]any) (gym.Observation, error) {
	var in ListDirArgs
	if err := DecodeArgs(args, &in); err != nil {
		return gym.Obs(l.Name(), fmt.Sprintf("Invalid arguments: %v.", err)), nil
	}
	if in.Path == "" {
		in.Path = "."
	}

	tree, err := env.DirectoryTree(ctx, in.Path, in.Depth)
	if err != nil {
		return gym.Obs(l.Name(), fmt.Sprintf("Cannot list `%s`: %v.", in.Path, err)), nil
	}
	return gym.Obs(l.Name(), tree), nil
}
