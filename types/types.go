package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Lesson is one ordered unit inside a course. Number is unique within
// its course.
type Lesson struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"title"`
	Link   string `json:"lesson_link,omitempty"`
}

// Course is one ingested learning unit. Title acts as the identifier in
// both the catalog and the content index.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"course_link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons,omitempty"`
}

// Chunk is an indexed span of course text. LessonNumber is nil for text
// that appears before any lesson marker.
type Chunk struct {
	ID           uuid.UUID
	CourseTitle  string
	LessonNumber *int
	Index        int
	Content      string
	Embedding    []float32
}

// SearchResult is one ranked snippet together with the metadata needed
// to label and link it.
type SearchResult struct {
	Content      string
	CourseTitle  string
	LessonNumber *int
	LessonLink   string
	Distance     float64
}

// SearchResults is the outcome of one similarity query. Error and
// non-empty Results are mutually exclusive: empty with no error means
// "no match", which is distinct from "query failed".
type SearchResults struct {
	Results []SearchResult
	Error   string
}

func (r SearchResults) IsEmpty() bool {
	return len(r.Results) == 0
}

// ErrorResults packs a failure into a result set instead of an error
// value, so it can flow back into the generation loop as renderable text.
func ErrorResults(format string, args ...any) SearchResults {
	return SearchResults{Error: fmt.Sprintf(format, args...)}
}

// Source is one citation shown to the user: a label like
// "Course — Lesson 1", optionally paired with a link.
type Source struct {
	Label string `json:"label"`
	Link  string `json:"link,omitempty"`
}

// Config holds the loader settings.
type Config struct {
	MonitoringTime time.Duration
	SourceDir      string
	ArchiveDir     string
	BadDir         string
	ChunkSize      int
	ChunkOverlap   int
}
