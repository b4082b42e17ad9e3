// Package tools exposes the service's operations as named,
// schema-validated tools, dispatchable by HTTP clients and by the
// MCP-style protocol endpoint alike.
package tools

import (
	"context"

	"github.com/raglab/deeprag/pkg/apperr"
)

// Handler executes a tool invocation with already-validated arguments.
type Handler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

type Tool struct {
	Name        string
	Description string
	InputSchema Schema
	Handler     Handler
}

// Info is the listable surface of a tool, without its handler.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"inputSchema"`
}

// Registry maps tool names to handlers. It is populated at startup and
// read-only afterwards; no locking is needed for concurrent invocations.
type Registry struct {
	order []string
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Duplicate names are a startup error.
func (r *Registry) Register(tool Tool) error {
	if tool.Name == "" {
		return apperr.Configurationf("tool name must not be empty")
	}
	if _, exists := r.tools[tool.Name]; exists {
		return apperr.Configurationf("tool already registered: %s", tool.Name)
	}
	if tool.Handler == nil {
		return apperr.Configurationf("tool %s has no handler", tool.Name)
	}
	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)
	return nil
}

// List returns the registered tools in registration order.
func (r *Registry) List() []Info {
	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		infos = append(infos, Info{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return infos
}

// Invoke validates args against the named tool's schema and dispatches.
// Unknown names and schema violations surface to the caller without the
// handler ever running.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, apperr.NotFoundf("unknown tool: %s", name)
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	if err := tool.InputSchema.Validate(args); err != nil {
		return nil, err
	}
	return tool.Handler(ctx, args)
}
