package service

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"courserag/loader/internal"
	"courserag/store"
	"courserag/types"
)

type Service struct {
	logger *slog.Logger
	store  store.DBStorer
	loader *internal.CourseLoader
}

func New(storer store.DBStorer) *Service {
	return &Service{
		logger: slog.Default(),
		store:  storer,
		loader: internal.NewCourseLoader(ConfigFromEnv()),
	}
}

func ConfigFromEnv() types.Config {
	monitoring, _ := strconv.Atoi(os.Getenv("MONITORING_TIME"))
	if monitoring <= 0 {
		monitoring = 3
	}
	chunkSize, _ := strconv.Atoi(os.Getenv("CHUNK_SIZE"))
	if chunkSize <= 0 {
		chunkSize = 800
	}
	chunkOverlap, _ := strconv.Atoi(os.Getenv("CHUNK_OVERLAP"))
	if chunkOverlap <= 0 {
		chunkOverlap = 100
	}

	return types.Config{
		MonitoringTime: time.Duration(monitoring) * time.Second,
		SourceDir:      os.Getenv("LOADER_SOURCE_DIR"),
		ArchiveDir:     os.Getenv("LOADER_ARCHIVE_DIR"),
		BadDir:         os.Getenv("LOADER_BAD_DIR"),
		ChunkSize:      chunkSize,
		ChunkOverlap:   chunkOverlap,
	}
}

func (s *Service) Stop() {
	s.logger.Info("Loader Service stopped")
}

func (s *Service) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fileChan := make(chan string, 10)
	courseChan := make(chan *internal.Payload)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(fileChan)
		s.loader.WatchFile(ctx, fileChan)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.loader.ProcessFile(ctx, fileChan, courseChan)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.CourseSave(ctx, courseChan)
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)

	<-sigch
	log.Println("Received shutdown signal, shutting down gracefully...")

	cancel()
	signal.Stop(sigch)
	close(sigch)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("All goroutines stopped successfully")
	case <-shutdownCtx.Done():
		log.Println("Timeout waiting for goroutines to stop, forcing shutdown...")
	}

	s.Stop()
}

// CourseSave persists parsed courses. Already-ingested titles are
// skipped and archived, so re-dropping a file never duplicates chunks.
func (s *Service) CourseSave(ctx context.Context, courseChan <-chan *internal.Payload) {
	for payload := range courseChan {
		exists, err := s.store.HasCourse(ctx, payload.Course.Title)
		if err != nil {
			s.logger.Error("course lookup failed", "title", payload.Course.Title, "error", err)
			continue
		}
		if exists {
			s.logger.Info("course already ingested, skipping", "title", payload.Course.Title)
			s.loader.MoveToArchive(payload.SourcePath, 0)
			continue
		}

		if err := s.store.SaveCourse(ctx, payload.Course, payload.TitleEmbedding); err != nil {
			s.logger.Error("error saving course", "title", payload.Course.Title, "error", err)
			s.loader.MoveToArchive(payload.SourcePath, 1)
			continue
		}

		saved := 0
		for i := range payload.Chunks {
			if err := s.store.SaveChunk(ctx, payload.Chunks[i]); err != nil {
				s.logger.Error("error saving chunk", "title", payload.Course.Title, "index", payload.Chunks[i].Index, "error", err)
				continue
			}
			saved++
		}

		s.logger.Info("course ingested", "title", payload.Course.Title, "lessons", len(payload.Course.Lessons), "chunks", saved)
		s.loader.MoveToArchive(payload.SourcePath, 0)
	}
}
