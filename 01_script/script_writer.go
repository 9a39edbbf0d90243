package script

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"shorts-studio/config"
	"shorts-studio/stage"
)

// errEmptyCompletion marks a completion that came back without text
var errEmptyCompletion = errors.New("model returned no text")

// TextGenerator is the language-model call the writer depends on
type TextGenerator interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Writer turns a topic into a short narration script
type Writer struct {
	cfg       *config.Config
	generator TextGenerator
}

// New creates a new script Writer around the given generator
func New(cfg *config.Config, generator TextGenerator) *Writer {
	return &Writer{cfg: cfg, generator: generator}
}

// NewFromConfig picks the provider named in script.provider
func NewFromConfig(ctx context.Context, cfg *config.Config, apiKey string) (*Writer, error) {
	switch cfg.Script.Provider {
	case "gemini":
		gen, err := NewGemini(ctx, apiKey, cfg.Script.Model)
		if err != nil {
			return nil, err
		}
		return New(cfg, gen), nil
	default:
		return New(cfg, NewOpenAI(apiKey, cfg.Script.Model, cfg.Script.BaseURL)), nil
	}
}

// BuildPrompt fills the fixed template with the topic
func BuildPrompt(template, topic string) string {
	return fmt.Sprintf(template, topic)
}

// Generate asks the model for a ~30 second narration script about topic.
// The topic is not validated; an empty one is sent as-is.
func (w *Writer) Generate(ctx context.Context, topic string) (string, error) {
	log.Printf("[script] Generating script via %s (%s)...", w.cfg.Script.Provider, w.cfg.Script.Model)

	prompt := BuildPrompt(w.cfg.Script.PromptTemplate, topic)
	content, err := w.generator.Complete(ctx, prompt, w.cfg.Script.Temperature)
	if err != nil {
		if errors.Is(err, errEmptyCompletion) {
			return "", stage.Malformed(stage.Script, "empty completion", err)
		}
		return "", stage.Service(stage.Script, "text generation request", err)
	}

	script := strings.TrimSpace(content)
	if script == "" {
		return "", stage.Malformed(stage.Script, "empty completion", errEmptyCompletion)
	}

	log.Printf("[script] ✅ Script ready: %d words", len(strings.Fields(script)))
	return script, nil
}
