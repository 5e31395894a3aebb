package toolbox

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Namespace tags every definition the registry publishes.
const Namespace = "debuggym"

// Errors returned by Registry operations. They indicate wiring mistakes
// and fail fast during setup; agent facing lookup failures go through
// Resolve instead.
var (
	// ErrDuplicateTool indicates a second registration under one name.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrToolNotFound indicates a lookup of an unregistered name.
	ErrToolNotFound = errors.New("tool not registered")
)

// Registry holds the environment's tools, at most one per name, preserving
// registration order for listings and published definitions.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: Add returns ErrDuplicateTool, Remove and Get return
//   ErrToolNotFound, all wrapped with the tool name.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]Tool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Add registers tool under its name.
func (r *Registry) Add(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Remove unregisters the named tool and returns it.
func (r *Registry) Remove(name string) (Tool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return tool, nil
}

// Has reports whether a tool is registered under name. It never fails.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.tools[name]
	return exists
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return tool, nil
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Names returns the comma separated tool listing in registration order.
func (r *Registry) Names() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return strings.Join(r.order, ", ")
}

// Resolve matches call against the registry. On success it returns the
// tool and the call's arguments, preserved exactly. An unknown name is an
// agent mistake, not a wiring error: Resolve reports it in reason so the
// step can carry the text as an observation instead of failing.
func (r *Registry) Resolve(call ToolCall) (tool Tool, args map[string]any, reason string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[call.Name]
	if !exists {
		return nil, nil, fmt.Sprintf("Unregistered tool: %s", call.Name)
	}
	args = call.Arguments
	if args == nil {
		args = map[string]any{}
	}
	return tool, args, ""
}

// Definitions publishes every registered tool as a namespaced definition
// in registration order.
func (r *Registry) Definitions() []model.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Tool, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, model.Tool{
			Tool: mcp.Tool{
				Name:        t.Name(),
				Description: t.Description(),
				InputSchema: InputSchema(t),
			},
			Namespace: Namespace,
			Tags:      model.NormalizeTags([]string{string(t.Kind())}),
		})
	}
	return out
}
