package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFilterNone(t *testing.T) {
	f := BuildFilter("", nil)
	assert.True(t, f.IsZero())

	conds, args := f.conditions(2)
	assert.Empty(t, conds)
	assert.Empty(t, args)
}

func TestBuildFilterCourseOnly(t *testing.T) {
	f := BuildFilter("My Course", nil)
	assert.False(t, f.IsZero())

	conds, args := f.conditions(2)
	assert.Equal(t, []string{"c.course_title = $2"}, conds)
	assert.Equal(t, []any{"My Course"}, args)
}

func TestBuildFilterLessonOnly(t *testing.T) {
	lesson := 3
	f := BuildFilter("", &lesson)

	conds, args := f.conditions(2)
	assert.Equal(t, []string{"c.lesson_number = $2"}, conds)
	assert.Equal(t, []any{3}, args)
}

func TestBuildFilterBoth(t *testing.T) {
	lesson := 1
	f := BuildFilter("My Course", &lesson)

	conds, args := f.conditions(2)
	assert.Equal(t, []string{"c.course_title = $2", "c.lesson_number = $3"}, conds)
	assert.Equal(t, []any{"My Course", 1}, args)
}

func TestBuildFilterLessonZeroIsValid(t *testing.T) {
	lesson := 0
	f := BuildFilter("", &lesson)
	assert.False(t, f.IsZero())

	conds, args := f.conditions(2)
	assert.Equal(t, []string{"c.lesson_number = $2"}, conds)
	assert.Equal(t, []any{0}, args)
}
