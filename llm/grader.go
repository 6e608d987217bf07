// Package llm grades transcripts against a chat-completion endpoint.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const promptTemplate = `You are an English grammar evaluator.

Evaluate the grammar in the following transcript.
Rate grammar correctness from 0 to 10 (10 = perfect grammar),
and provide concise feedback in 2-3 sentences.

Transcript:
"""%s"""

Respond ONLY in valid JSON:
{
  "score": <number>,
  "feedback": "<your feedback text>"
}`

// Models often wrap the JSON in commentary or a reasoning block, so the
// candidate payload is the greedy first-{-to-last-} span of the content.
var jsonSpanRe = regexp.MustCompile(`(?s)\{.*\}`)

// GradingResult is the outcome of grading one transcript. Score carries
// whatever JSON type the model produced and is nil when the model's output
// could not be parsed or the call failed.
type GradingResult struct {
	Score    any
	Feedback string
}

// Grader scores transcripts by asking a chat-completion model for a grammar
// rating and feedback.
type Grader struct {
	Client *openai.Client
	Model  string
	Logger *log.Logger
}

// NewGrader builds a Grader against an OpenAI-compatible endpoint. baseURL
// must include the /v1 prefix, e.g. "https://llm.example.com/v1".
func NewGrader(apiKey, baseURL, model string, logger *log.Logger) (*Grader, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if logger == nil {
		logger = log.Default()
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return &Grader{
		Client: openai.NewClientWithConfig(cfg),
		Model:  model,
		Logger: logger,
	}, nil
}

// Grade asks the model to score the given text. It never fails: any
// transport error, bad status, or unparsable reply degrades into the
// returned result so the caller can still answer with a transcript.
func (g *Grader) Grade(ctx context.Context, text string) GradingResult {
	req := openai.ChatCompletionRequest{
		Model: g.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(promptTemplate, text)},
		},
		Temperature: 0.3,
	}

	resp, err := g.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		g.Logger.Printf("Grading request failed: %v", err)
		return errorResult(err)
	}
	if len(resp.Choices) == 0 {
		return errorResult(fmt.Errorf("completion contained no choices"))
	}

	return extractResult(resp.Choices[0].Message.Content)
}

// extractResult pulls {score, feedback} out of the model's free-text reply.
func extractResult(content string) GradingResult {
	span := jsonSpanRe.FindString(content)
	if span == "" {
		// No JSON at all; hand the raw reply back as feedback.
		return GradingResult{Feedback: strings.TrimSpace(content)}
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		return errorResult(err)
	}

	result := GradingResult{Score: parsed["score"]}
	if fb, ok := parsed["feedback"].(string); ok {
		result.Feedback = strings.TrimSpace(fb)
	}
	return result
}

func errorResult(err error) GradingResult {
	return GradingResult{Feedback: fmt.Sprintf("Error contacting model: %v", err)}
}
