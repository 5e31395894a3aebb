package toolbox

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidArguments reports a ToolCall whose arguments do not satisfy
// the tool's declared schema.
var ErrInvalidArguments = errors.New("invalid tool arguments")

// InputSchema builds the JSON schema describing t's declared arguments,
// in the object-with-properties shape tool definitions publish.
func InputSchema(t Tool) map[string]any {
	properties := make(map[string]any)
	for name, spec := range t.Arguments() {
		properties[name] = map[string]any{
			"type":        spec.Type,
			"description": spec.Description,
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}
}

// ValidateArgs checks args against t's declared argument schema. Unknown
// argument names and type mismatches fail; every declared argument is
// optional, tools report missing ones themselves. The returned error
// wraps ErrInvalidArguments and lists each violation.
func ValidateArgs(t Tool, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	schema := InputSchema(t)
	schema["additionalProperties"] = false

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("validate arguments for %s: %w", t.Name(), err)
	}
	if result.Valid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidArguments, strings.Join(details, "; "))
}

// DecodeArgs decodes an argument map into a typed argument struct. Tools
// call it at the top of Use to go from the call record to their own
// types; numeric JSON values decode into int fields.
func DecodeArgs(args map[string]any, out any) error {
	if err := mapstructure.Decode(args, out); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}
