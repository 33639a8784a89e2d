package store

import (
	"context"
	"fmt"
	"log"

	"courserag/model"
	"courserag/types"
)

const DefaultMaxResults = 5

// Searcher is the query surface the retrieval tool depends on.
type Searcher interface {
	Search(ctx context.Context, query, courseName string, lessonNumber *int) types.SearchResults
}

// Index is a stateless query facade over the two sub-indexes: the course
// catalog (title embeddings) and the content chunks.
type Index struct {
	store      DBStorer
	embedder   model.EmbedderInterface
	maxResults int
}

func NewIndex(store DBStorer, embedder model.EmbedderInterface, maxResults int) *Index {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Index{
		store:      store,
		embedder:   embedder,
		maxResults: maxResults,
	}
}

// ResolveCourseName maps a partial or misspelled course name to the
// nearest stored title. Returns "" only when the catalog is empty.
func (ix *Index) ResolveCourseName(ctx context.Context, name string) (string, error) {
	vec, err := ix.embedder.Embed(name)
	if err != nil {
		return "", fmt.Errorf("embed course name: %w", err)
	}
	return ix.store.NearestCourse(ctx, vec)
}

// Search runs one similarity query, resolving the course name first when
// given. An unresolvable course short-circuits with an error result and
// never falls back to an unfiltered query. Index failures are captured
// in the result set instead of being returned as errors.
func (ix *Index) Search(ctx context.Context, query, courseName string, lessonNumber *int) types.SearchResults {
	var courseTitle string
	if courseName != "" {
		title, err := ix.ResolveCourseName(ctx, courseName)
		if err != nil {
			log.Printf("[SEARCH] course resolution failed: %v", err)
			return types.ErrorResults("No course found matching '%s'", courseName)
		}
		if title == "" {
			return types.ErrorResults("No course found matching '%s'", courseName)
		}
		courseTitle = title
	}

	filter := BuildFilter(courseTitle, lessonNumber)

	vec, err := ix.embedder.Embed(query)
	if err != nil {
		log.Printf("[SEARCH] query embedding failed: %v", err)
		return types.ErrorResults("Search error: %v", err)
	}

	results, err := ix.store.SearchChunks(ctx, vec, filter, ix.maxResults)
	if err != nil {
		log.Printf("[SEARCH] index query failed: %v", err)
		return types.ErrorResults("Search error: %v", err)
	}

	return types.SearchResults{Results: results}
}
