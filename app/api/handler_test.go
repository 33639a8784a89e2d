package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"courserag/app/agent"
	"courserag/session"
	"courserag/store"
	"courserag/types"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	result agent.GenerateResult
	err    error
}

func (s *stubGenerator) Generate(context.Context, string, string, *agent.ToolRegistry) (agent.GenerateResult, error) {
	return s.result, s.err
}

type stubSearcher struct{}

func (stubSearcher) Search(context.Context, string, string, *int) types.SearchResults {
	return types.SearchResults{}
}

type stubStore struct {
	count  int
	titles []string
}

func (s *stubStore) SaveCourse(context.Context, types.Course, []float32) error { return nil }
func (s *stubStore) SaveChunk(context.Context, types.Chunk) error              { return nil }
func (s *stubStore) HasCourse(context.Context, string) (bool, error)           { return false, nil }
func (s *stubStore) DeleteCourse(context.Context, string) error                { return nil }
func (s *stubStore) CourseCount(context.Context) (int, error)                  { return s.count, nil }
func (s *stubStore) CourseTitles(context.Context) ([]string, error)            { return s.titles, nil }
func (s *stubStore) NearestCourse(context.Context, []float32) (string, error)  { return "", nil }
func (s *stubStore) SearchChunks(context.Context, []float32, store.SearchFilter, int) ([]types.SearchResult, error) {
	return nil, nil
}

func newTestApp(gen agent.AnswerGenerator, db store.DBStorer) *fiber.App {
	rag := agent.NewRAGSystem(session.NewStore(2), stubSearcher{}, gen)
	handler := NewQueryHandler(rag, db)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/api/v1/query", handler.HandleQuery)
	app.Get("/api/v1/courses", handler.HandleCourses)
	app.Delete("/api/v1/sessions/:id", handler.HandleClearSession)
	return app
}

func TestHandleQuery(t *testing.T) {
	gen := &stubGenerator{result: agent.GenerateResult{
		Answer:  "foo bar is covered in lesson one",
		Sources: []types.Source{{Label: "Intro to X - Lesson 1", Link: "https://example.com/l1"}},
	}}
	app := newTestApp(gen, &stubStore{})

	body := bytes.NewBufferString(`{"query":"what is foo"}`)
	req := httptest.NewRequest("POST", "/api/v1/query", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var qr types.QueryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&qr))
	assert.Equal(t, "foo bar is covered in lesson one", qr.Answer)
	assert.NotEmpty(t, qr.SessionID)
	require.Len(t, qr.Sources, 1)
	assert.Equal(t, "Intro to X - Lesson 1", qr.Sources[0].Label)
}

func TestHandleQueryMissingQuery(t *testing.T) {
	app := newTestApp(&stubGenerator{}, &stubStore{})

	req := httptest.NewRequest("POST", "/api/v1/query", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleQueryGenerationFailure(t *testing.T) {
	gen := &stubGenerator{err: &agent.GenerationError{Err: assert.AnError}}
	app := newTestApp(gen, &stubStore{})

	req := httptest.NewRequest("POST", "/api/v1/query", bytes.NewBufferString(`{"query":"q"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestHandleCourses(t *testing.T) {
	app := newTestApp(&stubGenerator{}, &stubStore{count: 2, titles: []string{"A", "B"}})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/courses", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stats types.CourseStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 2, stats.TotalCourses)
	assert.Equal(t, []string{"A", "B"}, stats.CourseTitles)
}

func TestHandleClearSession(t *testing.T) {
	app := newTestApp(&stubGenerator{}, &stubStore{})

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/v1/sessions/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
