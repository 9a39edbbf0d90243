package script

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIGenerator calls the chat completions API
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAI creates a generator; baseURL overrides the API host when set.
// Retries are disabled, a failed call is reported as-is.
func NewOpenAI(apiKey, model, baseURL string) *OpenAIGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Complete sends one user message and returns the first choice's content
func (g *OpenAIGenerator) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	chatCompletion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(g.model),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(chatCompletion.Choices) == 0 {
		return "", fmt.Errorf("no choices in response: %w", errEmptyCompletion)
	}

	content := chatCompletion.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("finish reason %s: %w", chatCompletion.Choices[0].FinishReason, errEmptyCompletion)
	}
	return content, nil
}
