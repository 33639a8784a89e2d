package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"

	"courserag/types"

	openai "github.com/sashabaranov/go-openai"
)

// systemPrompt keeps the model on course material and limits it to a
// single search per query.
const systemPrompt = `You are an AI assistant specialized in course materials and educational content with access to a search tool for course information.

Search Tool Usage:
- Use the search tool only for questions about specific course content or detailed educational materials
- One search per query maximum
- Synthesize search results into accurate, fact-based responses
- If the search yields no results, state this clearly without offering alternatives

Response Protocol:
- General knowledge questions: answer from existing knowledge without searching
- Course-specific questions: search first, then answer
- Provide direct answers only - no reasoning process, search explanations, or mentions of "based on the search results"

All responses must be brief, educational, clear, and example-supported when helpful.`

// GenerationError is fatal for the current query: without the
// generation service no answer can be produced at all. Not retried here.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation service failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// GenerateResult is the terminal outcome of one tool-use conversation:
// the answer plus whatever sources the tools cited along the way.
type GenerateResult struct {
	Answer  string
	Sources []types.Source
}

type AnswerGenerator interface {
	Generate(ctx context.Context, query, history string, registry *ToolRegistry) (GenerateResult, error)
}

// Generator drives the two-phase tool-use conversation against a chat
// completions endpoint.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewGenerator настраивает клиента из переменных окружения
func NewGenerator() *Generator {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("OPENAI_MODEL not set, defaulting to gpt-4o-mini")
	}

	cfg := openai.DefaultConfig(apiKey)
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}

	temperature := float32(0)
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			temperature = float32(f)
		}
	}
	maxTokens := 800
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxTokens = n
		}
	}

	return NewGeneratorWithClient(openai.NewClientWithConfig(cfg), model, temperature, maxTokens)
}

func NewGeneratorWithClient(client *openai.Client, model string, temperature float32, maxTokens int) *Generator {
	return &Generator{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Conversation states. The loop below only ever walks
// Init -> AwaitingModel -> (ToolRequested -> AwaitingModel)? -> Answered.
type genState int

const (
	stateInit genState = iota
	stateAwaitingModel
	stateToolRequested
	stateAnswered
)

// Generate issues the initial call with tool schemas attached, executes
// any requested tool calls, and issues exactly one follow-up call
// without schemas. Dropping the schemas from the follow-up is what
// limits every query to a single retrieval round: the model has nothing
// left to invoke.
func (g *Generator) Generate(ctx context.Context, query, history string, registry *ToolRegistry) (GenerateResult, error) {
	system := systemPrompt
	if history != "" {
		system += "\n\nPrevious conversation:\n" + history
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}

	var result GenerateResult
	state := stateInit
	withTools := registry != nil && len(registry.Definitions()) > 0

	for state != stateAnswered {
		req := openai.ChatCompletionRequest{
			Model:       g.model,
			Messages:    messages,
			Temperature: g.temperature,
			MaxTokens:   g.maxTokens,
		}
		if req.Temperature == 0 {
			// go-openai drops a zero temperature via omitempty, which
			// would fall back to the server default
			req.Temperature = math.SmallestNonzeroFloat32
		}
		if withTools {
			req.Tools = registry.Definitions()
			req.ToolChoice = "auto"
		}

		state = stateAwaitingModel
		resp, err := g.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return GenerateResult{}, &GenerationError{Err: err}
		}
		if len(resp.Choices) == 0 {
			return GenerateResult{}, &GenerationError{Err: errors.New("empty choices in completion response")}
		}

		choice := resp.Choices[0]

		if withTools && len(choice.Message.ToolCalls) > 0 {
			state = stateToolRequested
			messages = append(messages, choice.Message)

			for _, call := range choice.Message.ToolCalls {
				res := registry.Dispatch(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
				result.Sources = append(result.Sources, res.Sources...)
				messages = append(messages, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    res.Output,
					ToolCallID: call.ID,
				})
			}

			withTools = false
			continue
		}

		result.Answer = choice.Message.Content
		state = stateAnswered
	}

	return result, nil
}
