package toolbox

import (
	"errors"
	"testing"
)

func TestInputSchema(t *testing.T) {
	tool := &stubTool{
		name: "tool1",
		args: map[string]ArgSpec{
			"command": {Type: []string{"string"}, Description: "command description"},
		},
	}

	schema := InputSchema(tool)
	if schema["type"] != "object" {
		t.Errorf("schema type = %v, want object", schema["type"])
	}
	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties type = %T, want map[string]any", schema["properties"])
	}
	command, ok := properties["command"].(map[string]any)
	if !ok {
		t.Fatalf("command property missing: %v", properties)
	}
	if command["description"] != "command description" {
		t.Errorf("command description = %v", command["description"])
	}
}

func TestValidateArgs(t *testing.T) {
	tool := &stubTool{
		name: "tool1",
		args: map[string]ArgSpec{
			"path":  {Type: []string{"string"}, Description: "a path"},
			"depth": {Type: []string{"number"}, Description: "a depth"},
		},
	}

	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{"valid", map[string]any{"path": "file.py", "depth": 2}, false},
		{"empty", map[string]any{}, false},
		{"nil", nil, false},
		{"subset", map[string]any{"path": "file.py"}, false},
		{"wrong type", map[string]any{"path": 42}, true},
		{"unknown argument", map[string]any{"bogus": "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArgs(tool, tt.args)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArguments) {
					t.Errorf("ValidateArgs() error = %v, want ErrInvalidArguments", err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateArgs() error = %v", err)
			}
		})
	}
}

func TestDecodeArgs(t *testing.T) {
	var in RewriteArgs
	args := map[string]any{
		"path":     "file1.txt",
		"start":    float64(2),
		"end":      3,
		"new_code": "x = 1",
	}
	if err := DecodeArgs(args, &in); err != nil {
		t.Fatalf("DecodeArgs() error = %v", err)
	}
	if in.Path != "file1.txt" || in.Start != 2 || in.End != 3 || in.NewCode != "x = 1" {
		t.Errorf("DecodeArgs() = %+v", in)
	}
}

func TestDecodeArgsPartial(t *testing.T) {
	var in RewriteArgs
	if err := DecodeArgs(map[string]any{"path": "file1.txt"}, &in); err != nil {
		t.Fatalf("DecodeArgs() error = %v", err)
	}
	if in.Path != "file1.txt" || in.Start != 0 || in.End != 0 || in.NewCode != "" {
		t.Errorf("DecodeArgs() = %+v, want zero values for omitted fields", in)
	}
}
