package internal

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"courserag/model"
	"courserag/types"

	"github.com/google/uuid"
)

// Payload is one parsed course ready to be saved: catalog entry, title
// embedding for fuzzy resolution, and embedded content chunks.
type Payload struct {
	Course         types.Course
	TitleEmbedding []float32
	Chunks         []types.Chunk
	SourcePath     string
}

type CourseLoader struct {
	cfg      types.Config
	embedder model.EmbedderInterface
	chunker  *Chunker

	FileMutex       sync.Mutex
	FileFirstSeen   map[string]time.Time
	FilesProcessing map[string]bool
}

func NewCourseLoader(cfg types.Config) *CourseLoader {
	createDirectories(cfg.SourceDir, cfg.ArchiveDir, cfg.BadDir)
	return &CourseLoader{
		cfg:             cfg,
		embedder:        model.NewEmbedder(),
		chunker:         NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		FileFirstSeen:   make(map[string]time.Time),
		FilesProcessing: make(map[string]bool),
	}
}

// WatchFile polls the source directory and emits files that have not
// changed for MonitoringTime, so half-copied uploads are left alone.
func (l *CourseLoader) WatchFile(ctx context.Context, fileChan chan<- string) {
	log.Printf("[LOADER] Start monitoring folder: %s", l.cfg.SourceDir)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	defer log.Println("[LOADER] File watcher stopped and cleaned up")

	for {
		select {
		case <-ctx.Done():
			log.Println("[LOADER] Stopping file watcher (context cancelled)...")
			return
		case <-ticker.C:
			files, err := os.ReadDir(l.cfg.SourceDir)
			if err != nil {
				log.Printf("[LOADER] error while reading source directory: %s", err)
				continue
			}

			currentFiles := make(map[string]bool)

			for _, file := range files {
				if file.IsDir() {
					continue
				}

				filePath := filepath.Join(l.cfg.SourceDir, file.Name())
				currentFiles[filePath] = true

				l.FileMutex.Lock()
				if l.FilesProcessing[filePath] {
					l.FileMutex.Unlock()
					continue
				}

				if _, exists := l.FileFirstSeen[filePath]; !exists {
					l.FileFirstSeen[filePath] = time.Now()
					log.Printf("[LOADER] New file detected: %s", filePath)
					l.FileMutex.Unlock()
					continue
				}

				firstSeen := l.FileFirstSeen[filePath]
				l.FileMutex.Unlock()

				if time.Since(firstSeen) > l.cfg.MonitoringTime {
					l.FileMutex.Lock()
					l.FilesProcessing[filePath] = true
					l.FileMutex.Unlock()

					select {
					case fileChan <- filePath:
					case <-ctx.Done():
						return
					}
				}
			}

			// Удаляем из карты файлы, которых больше нет в директории
			l.FileMutex.Lock()
			for filePath := range l.FileFirstSeen {
				if !currentFiles[filePath] {
					delete(l.FileFirstSeen, filePath)
					delete(l.FilesProcessing, filePath)
				}
			}
			l.FileMutex.Unlock()
		}
	}
}

// ProcessFile turns incoming files into Payloads. Unparseable files go
// to the bad dir.
func (l *CourseLoader) ProcessFile(ctx context.Context, fileChan <-chan string, courseChan chan<- *Payload) {
	defer log.Println("[LOADER] File processor stopped and cleaned up")

	for {
		select {
		case <-ctx.Done():
			log.Println("[LOADER] Stopping file processor (context cancelled)...")
			return
		case filePath, ok := <-fileChan:
			if !ok {
				log.Println("[LOADER] File channel closed, stopping processor...")
				return
			}

			log.Printf("[LOADER] Processing file: %s", filePath)
			payload, err := l.fetchFile(filePath)
			if err != nil {
				log.Printf("[LOADER] Error processing file %s: %v", filePath, err)
				l.MoveToArchive(filePath, 1)
			} else {
				select {
				case courseChan <- payload:
				case <-ctx.Done():
					return
				}
			}

			l.FileMutex.Lock()
			delete(l.FilesProcessing, filePath)
			delete(l.FileFirstSeen, filePath)
			l.FileMutex.Unlock()
		}
	}
}

func (l *CourseLoader) fetchFile(filePath string) (*Payload, error) {
	doc, err := l.parseFile(filePath)
	if err != nil {
		return nil, err
	}

	payload := &Payload{
		Course:     doc.Course,
		SourcePath: filePath,
	}

	titleEmbedding, err := l.embedder.Embed(doc.Course.Title)
	if err != nil {
		return nil, fmt.Errorf("embed course title: %w", err)
	}
	payload.TitleEmbedding = titleEmbedding

	index := 0
	for _, section := range doc.Sections {
		for _, chunk := range l.chunker.Split(section.Content) {
			content := chunkContext(doc.Course.Title, section.LessonNumber, chunk)

			embedding, err := l.embedder.Embed(content)
			if err != nil {
				log.Printf("[LOADER] embedding error, chunk skipped: %v", err)
				continue
			}

			payload.Chunks = append(payload.Chunks, types.Chunk{
				ID:           uuid.New(),
				CourseTitle:  doc.Course.Title,
				LessonNumber: section.LessonNumber,
				Index:        index,
				Content:      content,
				Embedding:    embedding,
			})
			index++
		}
	}

	if len(payload.Chunks) == 0 {
		return nil, fmt.Errorf("no indexable content in %s", filePath)
	}
	return payload, nil
}

func (l *CourseLoader) parseFile(filePath string) (*CourseDocument, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".txt":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		return ParseCourseScript(string(data), titleFromFilename(filePath)), nil
	case ".pdf":
		text, err := ExtractPlainText(filePath)
		if err != nil {
			return nil, err
		}
		return &CourseDocument{
			Course:   types.Course{Title: titleFromFilename(filePath)},
			Sections: []Section{{Content: text}},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filePath)
	}
}

// chunkContext prefixes each chunk with its course and lesson so the
// embedding stays retrievable for lesson-scoped questions.
func chunkContext(courseTitle string, lessonNumber *int, chunk string) string {
	if lessonNumber != nil {
		return fmt.Sprintf("Course %s Lesson %d content: %s", courseTitle, *lessonNumber, chunk)
	}
	return fmt.Sprintf("Course %s content: %s", courseTitle, chunk)
}

func titleFromFilename(filePath string) string {
	fileName := filepath.Base(filePath)
	fileName = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	fileName = strings.ReplaceAll(fileName, "_", " ")
	fileName = strings.ReplaceAll(fileName, "-", " ")
	return fileName
}

// MoveToArchive relocates a processed file: fileState 1 means the bad
// dir, anything else the archive. Copy+remove so it works across mounts.
func (l *CourseLoader) MoveToArchive(filePath string, fileState int) {
	var state string
	switch fileState {
	case 1:
		state = l.cfg.BadDir
	default:
		state = l.cfg.ArchiveDir
	}

	currentDate := time.Now().Format("2006-01-02")
	destDir := filepath.Join(state, currentDate)

	if _, err := os.Stat(destDir); os.IsNotExist(err) {
		if err := os.MkdirAll(destDir, 0755); err != nil {
			log.Printf("[LOADER] error creating directory: %s", err)
			return
		}
	}

	destPath := filepath.Join(destDir, filepath.Base(filePath))

	// Обработка конфликтов имен файлов
	counter := 1
	for {
		if _, err := os.Stat(destPath); os.IsNotExist(err) {
			break
		}
		ext := filepath.Ext(destPath)
		baseName := strings.TrimSuffix(filepath.Base(destPath), ext)
		destPath = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", baseName, counter, ext))
		counter++
	}

	in, err := os.Open(filePath)
	if err != nil {
		log.Printf("[LOADER] error open file: %s", err)
		return
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		log.Printf("[LOADER] error create file: %s", err)
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		log.Printf("[LOADER] error moving file to archive: %s", err)
		return
	}

	log.Printf("[LOADER] File moved to archive: %s", destPath)
	in.Close()
	os.Remove(filePath)
}

func createDirectories(dirs ...string) {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("[LOADER] error creating directory %s: %v", dir, err)
		}
	}
}
