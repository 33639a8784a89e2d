package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"courserag/app/agent"
	"courserag/app/api"
	"courserag/app/middleware"
	"courserag/model"
	"courserag/session"
	"courserag/store"

	"github.com/gofiber/fiber/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	listenAddr string
	logger     *slog.Logger
}

func NewServer(addr string) *Server {
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()
	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	pool, err := store.NewPostgresStore(ctx, connStr)
	if err != nil {
		log.Fatal("error to connect to Postgres database", err)
		return
	}

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables", err)
		return
	}

	maxResults, _ := strconv.Atoi(os.Getenv("MAX_RESULTS"))
	maxHistory, _ := strconv.Atoi(os.Getenv("MAX_HISTORY"))

	// session store has process lifecycle: constructed here, gone on exit
	var (
		sessions  = session.NewStore(maxHistory)
		index     = store.NewIndex(pool, model.NewEmbedder(), maxResults)
		generator = agent.NewGenerator()
		rag       = agent.NewRAGSystem(sessions, index, generator)

		app          = fiber.New(config)
		checkHandler = api.NewCheckHandler()
		queryHandler = api.NewQueryHandler(rag, pool)

		check = app.Group("/check")
		apiv1 = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/query", queryHandler.HandleQuery)
	apiv1.Get("/courses", queryHandler.HandleCourses)
	apiv1.Delete("/sessions/:id", queryHandler.HandleClearSession)
	apiv1.Post("/upload", queryHandler.HandleUpload)

	app.Use(middleware.PlugStatic("/"))
	app.Static("/", "./frontend")

	err = app.Listen(s.listenAddr)
	if err != nil {
		s.logger.Error("error to start server", "error", err.Error())
		return
	}
}
