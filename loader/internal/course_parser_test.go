package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScript = `Course Title: Test Course
Course Link: https://example.com
Course Instructor: Prof. X

Lesson 1: Introduction
Lesson Link: https://example.com/l1
This is the content of lesson one. It covers basics of the topic.

Lesson 2: Advanced Topics
Lesson Link: https://example.com/l2
This is the content of lesson two. It covers advanced material.
`

func TestParseCourseScriptFull(t *testing.T) {
	doc := ParseCourseScript(sampleScript, "fallback")

	assert.Equal(t, "Test Course", doc.Course.Title)
	assert.Equal(t, "https://example.com", doc.Course.Link)
	assert.Equal(t, "Prof. X", doc.Course.Instructor)

	require.Len(t, doc.Course.Lessons, 2)
	assert.Equal(t, 1, doc.Course.Lessons[0].Number)
	assert.Equal(t, "Introduction", doc.Course.Lessons[0].Title)
	assert.Equal(t, "https://example.com/l1", doc.Course.Lessons[0].Link)
	assert.Equal(t, 2, doc.Course.Lessons[1].Number)

	require.Len(t, doc.Sections, 2)
	require.NotNil(t, doc.Sections[0].LessonNumber)
	assert.Equal(t, 1, *doc.Sections[0].LessonNumber)
	assert.Contains(t, doc.Sections[0].Content, "lesson one")
	assert.Contains(t, doc.Sections[1].Content, "lesson two")
}

func TestParseCourseScriptNoLessons(t *testing.T) {
	doc := ParseCourseScript(`Course Title: Plain Doc
Course Link: https://example.com
Course Instructor: Nobody

Just some text content without any lesson markers at all.
`, "fallback")

	assert.Equal(t, "Plain Doc", doc.Course.Title)
	assert.Empty(t, doc.Course.Lessons)

	require.Len(t, doc.Sections, 1)
	assert.Nil(t, doc.Sections[0].LessonNumber)
	assert.Contains(t, doc.Sections[0].Content, "Just some text")
}

func TestParseCourseScriptNoHeaderFallsBack(t *testing.T) {
	doc := ParseCourseScript("Plain transcript text. Nothing else.", "My File Name")

	assert.Equal(t, "My File Name", doc.Course.Title)
	require.Len(t, doc.Sections, 1)
	assert.Nil(t, doc.Sections[0].LessonNumber)
}

func TestParseCourseScriptLessonWithoutLink(t *testing.T) {
	doc := ParseCourseScript(`Course Title: C

Lesson 3: No Link Here
Some content for the third lesson.
`, "fallback")

	require.Len(t, doc.Course.Lessons, 1)
	assert.Equal(t, 3, doc.Course.Lessons[0].Number)
	assert.Empty(t, doc.Course.Lessons[0].Link)

	require.Len(t, doc.Sections, 1)
	require.NotNil(t, doc.Sections[0].LessonNumber)
	assert.Equal(t, 3, *doc.Sections[0].LessonNumber)
}

func TestParseCourseScriptEmpty(t *testing.T) {
	doc := ParseCourseScript("", "fallback")

	assert.Equal(t, "fallback", doc.Course.Title)
	assert.Empty(t, doc.Sections)
}

func TestTitleFromFilename(t *testing.T) {
	assert.Equal(t, "intro to x", titleFromFilename("/data/source/intro_to-x.txt"))
}
