package toolbox

import (
	"context"
	"fmt"

	"github.com/jonwraymond/debuggym/gym"
	"github.com/jonwraymond/debuggym/textutil"
)

// ViewArgs are the view tool's declared arguments.
type ViewArgs struct {
	Path string `mapstructure:"path"`
}

// View shows a workspace file with a line number gutter. Lines holding a
// breakpoint carry a B marker; read only files are called out in the
// header.
type View struct{}

// NewView returns the view tool.
func NewView() *View { return &View{} }

func (*View) Kind() Kind   { return KindInspect }
func (*View) Name() string { return "view" }

func (*View) Description() string {
	return "View the content of a file with line numbers and breakpoint markers."
}

func (*View) Arguments() map[string]ArgSpec {
	return map[string]ArgSpec{
		"path": {
			Type:        []string{"string"},
			Description: "Path of the file to view, relative to the working directory.",
		},
	}
}

func (v *View) Use(ctx context.Context, env Environment, args map[string]any) (gym.Observation, error) {
	var in ViewArgs
	if err := DecodeArgs(args, &in); err != nil {
		return gym.Obs(v.Name(), fmt.Sprintf("Invalid arguments: %v.", err)), nil
	}
	if in.Path == "" {
		return gym.Obs(v.Name(), "File path is None. Please provide a valid file path."), nil
	}

	content, err := env.ReadFile(in.Path)
	if err != nil {
		return gym.Obs(v.Name(), fmt.Sprintf("The file `%s` does not exist or is not in the current repository.", in.Path)), nil
	}
	protected, err := env.IsProtected(ctx, in.Path)
	if err != nil {
		return gym.Observation{}, &ToolError{Tool: v.Name(), Op: "check protection", Err: err}
	}

	header := fmt.Sprintf("Viewing `%s`.", in.Path)
	if protected {
		header = fmt.Sprintf("Viewing `%s`. The file is read-only, it is not editable.", in.Path)
	}
	numbered := textutil.LineNumbers(content, in.Path, env.Breakpoints())
	return gym.Obs(v.Name(), header+"\n\n"+numbered), nil
}
