package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"courserag/store"
	"courserag/types"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const SearchToolName = "search_course_content"

// CourseSearchTool adapts the semantic index to the tool-calling
// convention of the generation service.
type CourseSearchTool struct {
	index store.Searcher
}

func NewCourseSearchTool(index store.Searcher) *CourseSearchTool {
	return &CourseSearchTool{index: index}
}

type searchArgs struct {
	Query        string `json:"query"`
	CourseName   string `json:"course_name"`
	LessonNumber *int   `json:"lesson_number"`
}

func (t *CourseSearchTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        SearchToolName,
			Description: "Search course materials with smart course name matching and lesson filtering",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"query": {
						Type:        jsonschema.String,
						Description: "What to search for in the course content",
					},
					"course_name": {
						Type:        jsonschema.String,
						Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
					},
					"lesson_number": {
						Type:        jsonschema.Integer,
						Description: "Specific lesson number to search within (e.g. 1, 2, 3)",
					},
				},
				Required: []string{"query"},
			},
		},
	}
}

// Execute runs the search and renders the outcome as text for the
// model. Error text goes back verbatim; an empty result set becomes an
// explicit sentinel so "found nothing" is distinguishable from "did not
// run".
func (t *CourseSearchTool) Execute(ctx context.Context, raw json.RawMessage) ToolResult {
	var args searchArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return ToolResult{Output: fmt.Sprintf("Invalid search arguments: %v", err)}
	}

	results := t.index.Search(ctx, args.Query, args.CourseName, args.LessonNumber)

	if results.Error != "" {
		return ToolResult{Output: results.Error}
	}

	if results.IsEmpty() {
		out := "No relevant content found"
		if args.CourseName != "" {
			out += fmt.Sprintf(" in course '%s'", args.CourseName)
		}
		if args.LessonNumber != nil {
			out += fmt.Sprintf(" in lesson %d", *args.LessonNumber)
		}
		return ToolResult{Output: out + "."}
	}

	var blocks []string
	var sources []types.Source
	for _, res := range results.Results {
		label := res.CourseTitle
		if res.LessonNumber != nil {
			label += fmt.Sprintf(" - Lesson %d", *res.LessonNumber)
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", label, res.Content))
		sources = append(sources, types.Source{Label: label, Link: res.LessonLink})
	}

	return ToolResult{
		Output:  strings.Join(blocks, "\n\n"),
		Sources: sources,
	}
}
