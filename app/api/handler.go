package api

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"courserag/app/agent"
	"courserag/store"
	"courserag/types"

	"github.com/gofiber/fiber/v2"
)

type QueryHandler struct {
	rag   *agent.RAGSystem
	store store.DBStorer
}

func NewQueryHandler(rag *agent.RAGSystem, store store.DBStorer) *QueryHandler {
	return &QueryHandler{
		rag:   rag,
		store: store,
	}
}

// HandleQuery answers one question. The session id in the response must
// be echoed back by the client to keep conversational context.
func (h *QueryHandler) HandleQuery(c *fiber.Ctx) error {
	var params types.QueryParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	start := time.Now()
	answer, sources, sessionID, err := h.rag.Answer(c.Context(), params.Query, params.SessionID)
	if err != nil {
		slog.Error("query failed", "session_id", sessionID, "error", err)
		return err
	}
	slog.Info("query answered", "session_id", sessionID, "sources", len(sources), "took", time.Since(start))

	if sources == nil {
		sources = []types.Source{}
	}

	resp := &types.QueryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
		Timestamp: time.Now(),
	}
	return c.JSON(resp)
}

// HandleCourses returns catalog analytics for the UI.
func (h *QueryHandler) HandleCourses(c *fiber.Ctx) error {
	count, err := h.store.CourseCount(c.Context())
	if err != nil {
		return err
	}
	titles, err := h.store.CourseTitles(c.Context())
	if err != nil {
		return err
	}
	if titles == nil {
		titles = []string{}
	}

	return c.JSON(types.CourseStats{
		TotalCourses: count,
		CourseTitles: titles,
	})
}

func (h *QueryHandler) HandleClearSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return ErrBadRequest()
	}
	h.rag.ClearSession(sessionID)
	return c.JSON(fiber.Map{"result": "ok"})
}

// HandleUpload drops a course file into the loader's source directory;
// the loader picks it up from there.
func (h *QueryHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	path := filepath.Join(os.Getenv("LOADER_SOURCE_DIR"), filepath.Base(file.Filename))
	if err := c.SaveFile(file, path); err != nil {
		return err
	}
	slog.Info("file saved for ingestion", "path", path)

	return c.JSON(fiber.Map{"result": "ok"})
}
