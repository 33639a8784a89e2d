package agent

import (
	"context"
	"encoding/json"
	"testing"

	"courserag/types"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name   string
	result ToolResult
	calls  []json.RawMessage
}

func (s *stubTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        s.name,
			Description: "stub",
		},
	}
}

func (s *stubTool) Execute(_ context.Context, args json.RawMessage) ToolResult {
	s.calls = append(s.calls, args)
	return s.result
}

func TestRegistryRegisterAndDispatch(t *testing.T) {
	r := NewToolRegistry()
	tool := &stubTool{name: "t1", result: ToolResult{Output: "result"}}
	r.Register(tool)

	res := r.Dispatch(context.Background(), "t1", json.RawMessage(`{"query":"hello"}`))

	assert.Equal(t, "result", res.Output)
	require.Len(t, tool.calls, 1)
	assert.JSONEq(t, `{"query":"hello"}`, string(tool.calls[0]))
}

func TestRegistryDefinitionsKeepOrder(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&stubTool{name: "b"})
	r.Register(&stubTool{name: "a"})

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "b", defs[0].Function.Name)
	assert.Equal(t, "a", defs[1].Function.Name)
}

func TestRegistryReregisterOverwrites(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&stubTool{name: "t1", result: ToolResult{Output: "old"}})
	r.Register(&stubTool{name: "t1", result: ToolResult{Output: "new"}})

	res := r.Dispatch(context.Background(), "t1", nil)
	assert.Equal(t, "new", res.Output)
	assert.Len(t, r.Definitions(), 1)
}

func TestRegistryDispatchUnknownTool(t *testing.T) {
	r := NewToolRegistry()

	res := r.Dispatch(context.Background(), "hallucinated_tool", nil)

	assert.Contains(t, res.Output, "not found")
	assert.Empty(t, res.Sources)
	assert.NotEmpty(t, res.Output)
}

func TestToolResultSourcesThreading(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&stubTool{name: "t1", result: ToolResult{
		Output:  "content",
		Sources: []types.Source{{Label: "C1 - Lesson 1", Link: "https://example.com/l1"}},
	}})

	res := r.Dispatch(context.Background(), "t1", nil)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "C1 - Lesson 1", res.Sources[0].Label)
}
