package agent

import (
	"context"

	"courserag/session"
	"courserag/store"
	"courserag/types"
)

// RAGSystem is the top-level entry point for one query: session context
// in, answer and citations out.
type RAGSystem struct {
	sessions  *session.Store
	index     store.Searcher
	generator AnswerGenerator
}

func NewRAGSystem(sessions *session.Store, index store.Searcher, generator AnswerGenerator) *RAGSystem {
	return &RAGSystem{
		sessions:  sessions,
		index:     index,
		generator: generator,
	}
}

// Answer handles one user query. A missing session id gets a fresh one,
// which the caller must echo back for continuity. A fresh registry and
// tool instance are built per call so nothing carries over between
// queries.
func (r *RAGSystem) Answer(ctx context.Context, query, sessionID string) (string, []types.Source, string, error) {
	if sessionID == "" {
		sessionID = r.sessions.Create()
	}

	history := r.sessions.History(sessionID)

	registry := NewToolRegistry()
	registry.Register(NewCourseSearchTool(r.index))

	result, err := r.generator.Generate(ctx, query, history, registry)
	if err != nil {
		return "", nil, sessionID, err
	}

	r.sessions.Append(sessionID, query, result.Answer)

	return result.Answer, result.Sources, sessionID, nil
}

// ClearSession drops one conversation thread.
func (r *RAGSystem) ClearSession(sessionID string) {
	r.sessions.Clear(sessionID)
}
