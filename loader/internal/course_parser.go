package internal

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"courserag/types"
)

// Course scripts are plain text with a header block
//
//	Course Title: ...
//	Course Link: ...
//	Course Instructor: ...
//
// followed by "Lesson N: Title" markers, each optionally followed by a
// "Lesson Link:" line, then the lesson transcript.

var lessonRe = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// Section is one span of course text to be chunked. LessonNumber is nil
// for text that appears before any lesson marker.
type Section struct {
	LessonNumber *int
	Content      string
}

type CourseDocument struct {
	Course   types.Course
	Sections []Section
}

// ParseCourseScript reads the course format above. A missing title
// header falls back to the filename-derived title and the whole text
// becomes one unnumbered section.
func ParseCourseScript(content, fallbackTitle string) *CourseDocument {
	doc := &CourseDocument{
		Course: types.Course{Title: fallbackTitle},
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	// header block: metadata lines and blanks until the first content line
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "Course Title:") {
			doc.Course.Title = strings.TrimSpace(strings.TrimPrefix(line, "Course Title:"))
		} else if strings.HasPrefix(line, "Course Link:") {
			doc.Course.Link = strings.TrimSpace(strings.TrimPrefix(line, "Course Link:"))
		} else if strings.HasPrefix(line, "Course Instructor:") {
			doc.Course.Instructor = strings.TrimSpace(strings.TrimPrefix(line, "Course Instructor:"))
		} else if line != "" {
			break
		}
		i++
	}

	var current *Section
	var buf []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		buf = nil
		if text == "" {
			current = nil
			return
		}
		section := Section{Content: text}
		if current != nil {
			section.LessonNumber = current.LessonNumber
		}
		doc.Sections = append(doc.Sections, section)
		current = nil
	}

	for ; i < len(lines); i++ {
		line := lines[i]

		if m := lessonRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			number, _ := strconv.Atoi(m[1])
			lesson := types.Lesson{Number: number, Title: strings.TrimSpace(m[2])}

			// optional link line directly after the marker
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if strings.HasPrefix(next, "Lesson Link:") {
					lesson.Link = strings.TrimSpace(strings.TrimPrefix(next, "Lesson Link:"))
					i++
				}
			}

			doc.Course.Lessons = append(doc.Course.Lessons, lesson)
			n := number
			current = &Section{LessonNumber: &n}
			continue
		}

		buf = append(buf, line)
	}
	flush()

	return doc
}
