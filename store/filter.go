package store

import "strconv"

// SearchFilter is an equality restriction applied before similarity
// ranking. Four shapes: course only, lesson only, both, none.
// LessonNumber is a pointer so lesson 0 stays a valid filter.
type SearchFilter struct {
	CourseTitle  string
	LessonNumber *int
}

func BuildFilter(courseTitle string, lessonNumber *int) SearchFilter {
	return SearchFilter{
		CourseTitle:  courseTitle,
		LessonNumber: lessonNumber,
	}
}

func (f SearchFilter) IsZero() bool {
	return f.CourseTitle == "" && f.LessonNumber == nil
}

// conditions renders the filter as SQL conditions over the chunks table,
// numbering placeholders from start.
func (f SearchFilter) conditions(start int) ([]string, []any) {
	var conds []string
	var args []any

	if f.CourseTitle != "" {
		conds = append(conds, "c.course_title = "+placeholder(start))
		args = append(args, f.CourseTitle)
		start++
	}
	if f.LessonNumber != nil {
		conds = append(conds, "c.lesson_number = "+placeholder(start))
		args = append(args, *f.LessonNumber)
	}
	return conds, args
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
