package agent

import (
	"context"
	"errors"
	"testing"

	"courserag/session"
	"courserag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	result GenerateResult
	err    error

	lastQuery   string
	lastHistory string
	lastTools   int
}

func (f *fakeGenerator) Generate(_ context.Context, query, history string, registry *ToolRegistry) (GenerateResult, error) {
	f.lastQuery = query
	f.lastHistory = history
	f.lastTools = len(registry.Definitions())
	return f.result, f.err
}

func newSystem(gen *fakeGenerator) *RAGSystem {
	return NewRAGSystem(session.NewStore(2), &fakeSearcher{}, gen)
}

func TestAnswerCreatesSessionWhenMissing(t *testing.T) {
	gen := &fakeGenerator{result: GenerateResult{Answer: "hello"}}
	rag := newSystem(gen)

	answer, sources, sid, err := rag.Answer(context.Background(), "hi", "")

	require.NoError(t, err)
	assert.Equal(t, "hello", answer)
	assert.Empty(t, sources)
	assert.NotEmpty(t, sid)
	assert.Equal(t, 1, gen.lastTools)
}

func TestAnswerSecondTurnSeesFirstVerbatim(t *testing.T) {
	gen := &fakeGenerator{result: GenerateResult{Answer: "first answer"}}
	rag := newSystem(gen)

	_, _, sid, err := rag.Answer(context.Background(), "first question", "")
	require.NoError(t, err)

	gen.result = GenerateResult{Answer: "second answer"}
	_, _, sid2, err := rag.Answer(context.Background(), "second question", sid)
	require.NoError(t, err)

	assert.Equal(t, sid, sid2)
	assert.Contains(t, gen.lastHistory, "User: first question")
	assert.Contains(t, gen.lastHistory, "Assistant: first answer")
}

func TestAnswerReturnsSources(t *testing.T) {
	gen := &fakeGenerator{result: GenerateResult{
		Answer:  "cited answer",
		Sources: []types.Source{{Label: "Intro to X - Lesson 1", Link: "https://example.com/l1"}},
	}}
	rag := newSystem(gen)

	_, sources, _, err := rag.Answer(context.Background(), "q", "")

	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Intro to X - Lesson 1", sources[0].Label)
}

func TestAnswerGenerationFailureSkipsHistory(t *testing.T) {
	gen := &fakeGenerator{err: &GenerationError{Err: errors.New("service unreachable")}}
	sessions := session.NewStore(2)
	rag := NewRAGSystem(sessions, &fakeSearcher{}, gen)

	_, _, sid, err := rag.Answer(context.Background(), "q", "")

	require.Error(t, err)
	assert.Empty(t, sessions.History(sid))
}

func TestClearSession(t *testing.T) {
	gen := &fakeGenerator{result: GenerateResult{Answer: "a"}}
	sessions := session.NewStore(2)
	rag := NewRAGSystem(sessions, &fakeSearcher{}, gen)

	_, _, sid, err := rag.Answer(context.Background(), "q", "")
	require.NoError(t, err)
	require.NotEmpty(t, sessions.History(sid))

	rag.ClearSession(sid)
	assert.Empty(t, sessions.History(sid))
}
