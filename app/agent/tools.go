package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"courserag/types"

	openai "github.com/sashabaranov/go-openai"
)

// ToolResult carries a tool's renderable output plus the sources it
// cited. Output is never empty: it holds formatted snippets, an explicit
// "no results" sentinel, or an error message the model can explain.
type ToolResult struct {
	Output  string
	Sources []types.Source
}

// Tool is one callable capability advertised to the generation service.
type Tool interface {
	Definition() openai.Tool
	Execute(ctx context.Context, args json.RawMessage) ToolResult
}

type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("Tool '%s' not found", e.Name)
}

// ToolRegistry maps tool names to implementations and keeps the
// registration order for schema advertising.
type ToolRegistry struct {
	order []string
	tools map[string]Tool
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool keyed by its schema name. Re-registering the same
// name overwrites.
func (r *ToolRegistry) Register(tool Tool) {
	name := tool.Definition().Function.Name
	if _, ok := r.tools[name]; !ok {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

func (r *ToolRegistry) Definitions() []openai.Tool {
	defs := make([]openai.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Dispatch runs the named tool. The generation service can only request
// names it was shown, so an unknown name is an anomaly: it is logged and
// returned as tool-result text so generation can still proceed.
func (r *ToolRegistry) Dispatch(ctx context.Context, name string, args json.RawMessage) ToolResult {
	tool, ok := r.tools[name]
	if !ok {
		err := &UnknownToolError{Name: name}
		slog.Warn("generation service requested unregistered tool", "tool", name)
		return ToolResult{Output: err.Error()}
	}
	return tool.Execute(ctx, args)
}
