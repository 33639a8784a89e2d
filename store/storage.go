package store

import (
	"context"
	"log"

	"courserag/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type DBStorer interface {
	SaveCourse(context.Context, types.Course, []float32) error
	SaveChunk(context.Context, types.Chunk) error
	HasCourse(context.Context, string) (bool, error)
	DeleteCourse(context.Context, string) error
	CourseCount(context.Context) (int, error)
	CourseTitles(context.Context) ([]string, error)
	NearestCourse(context.Context, []float32) (string, error)
	SearchChunks(context.Context, []float32, SearchFilter, int) ([]types.SearchResult, error)
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
	}, nil
}

// SaveCourse upserts one catalog row plus the course's lessons. The title
// embedding feeds fuzzy course-name resolution.
func (p *PostgresStore) SaveCourse(ctx context.Context, course types.Course, titleEmbedding []float32) error {
	query := `INSERT INTO courses (title, link, instructor, lesson_count, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (title) DO UPDATE SET
			link = EXCLUDED.link,
			instructor = EXCLUDED.instructor,
			lesson_count = EXCLUDED.lesson_count,
			embedding = EXCLUDED.embedding
		`
	_, err := p.pool.Exec(
		ctx,
		query,
		course.Title,
		course.Link,
		course.Instructor,
		len(course.Lessons),
		pgvector.NewVector(titleEmbedding),
	)
	if err != nil {
		return err
	}

	for _, lesson := range course.Lessons {
		query := `INSERT INTO lessons (course_title, number, title, link)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (course_title, number) DO UPDATE SET
				title = EXCLUDED.title,
				link = EXCLUDED.link
			`
		if _, err := p.pool.Exec(ctx, query, course.Title, lesson.Number, lesson.Title, lesson.Link); err != nil {
			return err
		}
	}
	return nil
}

func (p *PostgresStore) SaveChunk(ctx context.Context, c types.Chunk) error {
	query := `
    INSERT INTO chunks (id, course_title, lesson_number, position, content, embedding)
    VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := p.pool.Exec(ctx, query,
		c.ID, c.CourseTitle, c.LessonNumber, c.Index, c.Content, pgvector.NewVector(c.Embedding),
	)
	return err
}

func (p *PostgresStore) HasCourse(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM courses WHERE title = $1)", title).Scan(&exists)
	return exists, err
}

func (p *PostgresStore) DeleteCourse(ctx context.Context, title string) error {
	if _, err := p.pool.Exec(ctx, "DELETE FROM chunks WHERE course_title = $1", title); err != nil {
		return err
	}
	if _, err := p.pool.Exec(ctx, "DELETE FROM lessons WHERE course_title = $1", title); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx, "DELETE FROM courses WHERE title = $1", title)
	return err
}

func (p *PostgresStore) CourseCount(ctx context.Context) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx, "SELECT count(*) FROM courses").Scan(&count)
	return count, err
}

func (p *PostgresStore) CourseTitles(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, "SELECT title FROM courses ORDER BY title")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// NearestCourse returns the stored title closest to the given embedding,
// or "" when the catalog is empty. No distance threshold: the top match
// wins regardless of score.
func (p *PostgresStore) NearestCourse(ctx context.Context, queryVec []float32) (string, error) {
	query := `
		SELECT title
		FROM courses
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT 1
	`
	var title string
	err := p.pool.QueryRow(ctx, query, pgvector.NewVector(queryVec)).Scan(&title)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return title, nil
}

// SearchChunks runs the similarity query with the filter applied inside
// the SQL, so ranking only ever sees the restricted candidate set.
func (p *PostgresStore) SearchChunks(ctx context.Context, queryVec []float32, filter SearchFilter, limit int) ([]types.SearchResult, error) {
	query := `
		SELECT c.content, c.course_title, c.lesson_number, COALESCE(l.link, ''),
		       1-(c.embedding <=> $1) as distance
		FROM chunks c
		LEFT JOIN lessons l ON l.course_title = c.course_title AND l.number = c.lesson_number
		WHERE c.embedding IS NOT NULL
	`
	args := []any{pgvector.NewVector(queryVec)}

	conds, condArgs := filter.conditions(len(args) + 1)
	for _, cond := range conds {
		query += " AND " + cond
	}
	args = append(args, condArgs...)

	query += " ORDER BY c.embedding <=> $1 LIMIT " + placeholder(len(args)+1)
	args = append(args, limit)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []types.SearchResult
	for rows.Next() {
		var res types.SearchResult
		if err := rows.Scan(
			&res.Content,
			&res.CourseTitle,
			&res.LessonNumber,
			&res.LessonLink,
			&res.Distance); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (p *PostgresStore) createRagTables(ctx context.Context) error {
	query := `
    CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS courses (
		title TEXT PRIMARY KEY,
		link TEXT,
		instructor TEXT,
		lesson_count INTEGER DEFAULT 0,
		embedding vector(768)
	);

	CREATE TABLE IF NOT EXISTS lessons (
		course_title TEXT NOT NULL,
		number INT NOT NULL,
		title TEXT,
		link TEXT,
		PRIMARY KEY (course_title, number)
	);

    CREATE TABLE IF NOT EXISTS chunks (
        id UUID PRIMARY KEY,
        course_title TEXT NOT NULL,
        lesson_number INT,
        position INT NOT NULL,
        content TEXT NOT NULL,
        embedding vector(768)
    );

	CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);

	-- Индексы для фильтрации
	CREATE INDEX IF NOT EXISTS idx_chunks_course_title ON chunks(course_title);
	CREATE INDEX IF NOT EXISTS idx_chunks_lesson_number ON chunks(lesson_number);
    `
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createRagTables(ctx)
}

// Close закрывает пул подключений
func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
