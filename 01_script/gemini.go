package script

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiGenerator calls the Gemini GenerateContent API
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed generator
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Complete generates text for the prompt
func (g *GeminiGenerator) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	temp := float32(temperature)
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: &temp,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	var sb strings.Builder
	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		for _, part := range result.Candidates[0].Content.Parts {
			if part != nil {
				sb.WriteString(part.Text)
			}
		}
	}
	text := sb.String()
	if text == "" {
		return "", fmt.Errorf("gemini: %w", errEmptyCompletion)
	}
	return text, nil
}
