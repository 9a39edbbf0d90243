package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/samber/lo"

	"shorts-studio/config"
	"shorts-studio/stage"
	"shorts-studio/types"
)

const metadataSystemPrompt = `You are a YouTube Shorts SEO strategist.
Write metadata that is accurate to the narration and optimized for search and click-through.
Keep the title short and specific. Tags mix broad and specific search terms, no hashtags.`

// metadataResponse is the structured output requested from the model
type metadataResponse struct {
	Title       string   `json:"title" jsonschema_description:"An engaging, honest title for the short"`
	Description string   `json:"description" jsonschema_description:"Two or three short paragraphs describing the video, ending with a call to subscribe"`
	Tags        []string `json:"tags" jsonschema_description:"Search tags without the leading #"`
}

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var metadataResponseSchema = GenerateSchema[metadataResponse]()

// Generator creates YouTube metadata from the topic and narration
type Generator struct {
	cfg    *config.Config
	client openai.Client
}

// New creates a new metadata Generator. It shares the script stage's base URL override.
func New(cfg *config.Config, apiKey string) *Generator {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.Script.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.Script.BaseURL))
	}
	return &Generator{cfg: cfg, client: openai.NewClient(opts...)}
}

// Generate asks the model for title, description and tags
func (g *Generator) Generate(ctx context.Context, topic, script string) (*types.VideoMetadata, error) {
	log.Println("[metadata] Generating YouTube metadata...")

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "video_metadata",
		Description: openai.String("YouTube Shorts title, description and tags"),
		Schema:      metadataResponseSchema,
		Strict:      openai.Bool(true),
	}

	chatCompletion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(metadataSystemPrompt),
			openai.UserMessage(buildMetadataPrompt(topic, script, g.cfg)),
		},
		Model: openai.ChatModel(g.cfg.Metadata.Model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return nil, stage.Service(stage.Metadata, "openai request", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return nil, stage.Malformed(stage.Metadata, "no choices in response", nil)
	}

	content := chatCompletion.Choices[0].Message.Content
	var raw metadataResponse
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, stage.Malformed(stage.Metadata, "parse metadata JSON", err).WithBody(content)
	}

	title := clampTitle(strings.TrimSpace(raw.Title), g.cfg.Metadata.TitleMaxChars)
	if title == "" {
		return nil, stage.Malformed(stage.Metadata, "model returned empty title", nil).WithBody(content)
	}

	meta := &types.VideoMetadata{
		Title:       title,
		Description: strings.TrimSpace(raw.Description),
		Tags:        normalizeTags(raw.Tags, g.cfg.Metadata.TagsCount),
		CategoryID:  g.cfg.Metadata.CategoryID,
		Visibility:  g.cfg.Upload.Visibility,
	}

	log.Printf("[metadata] ✅ Title: %q", meta.Title)
	log.Printf("[metadata] Tags: %d generated", len(meta.Tags))
	return meta, nil
}

func buildMetadataPrompt(topic, script string, cfg *config.Config) string {
	var sb strings.Builder
	sb.WriteString("Generate YouTube metadata for this vertical short.\n\n")
	sb.WriteString(fmt.Sprintf("TOPIC: %s\n\n", topic))
	sb.WriteString("NARRATION:\n")
	sb.WriteString(script)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Title under %d characters. Exactly %d tags.\n", cfg.Metadata.TitleMaxChars, cfg.Metadata.TagsCount))
	return sb.String()
}

// clampTitle shortens titles longer than max runes, marking the cut with "..."
func clampTitle(title string, max int) string {
	runes := []rune(title)
	if max <= 0 || len(runes) <= max {
		return title
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return strings.TrimSpace(string(runes[:max-3])) + "..."
}

// normalizeTags trims and de-duplicates tags, keeping at most n
func normalizeTags(tags []string, n int) []string {
	cleaned := lo.Uniq(lo.Compact(lo.Map(tags, func(t string, _ int) string {
		return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#"))
	})))
	if n > 0 && len(cleaned) > n {
		cleaned = cleaned[:n]
	}
	return cleaned
}
