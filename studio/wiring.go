package studio

import (
	"context"
	"log"
	"os"

	"shorts-studio/00_research"
	"shorts-studio/01_script"
	"shorts-studio/02_voice"
	"shorts-studio/03_image"
	"shorts-studio/04_subtitles"
	"shorts-studio/05_render"
	"shorts-studio/06_metadata"
	"shorts-studio/07_upload"
	"shorts-studio/config"
	"shorts-studio/executor"
	"shorts-studio/session"
)

// NewFromEnv builds a Studio over the real services, reading API keys from the environment
func NewFromEnv(ctx context.Context, cfg *config.Config, store session.Store) (*Studio, error) {
	scriptKey := os.Getenv("OPENAI_API_KEY")
	if cfg.Script.Provider == "gemini" {
		scriptKey = os.Getenv("GEMINI_API_KEY")
	}
	writer, err := script.NewFromConfig(ctx, cfg, scriptKey)
	if err != nil {
		return nil, err
	}

	exec := executor.New()
	stages := Stages{
		Script:    writer,
		Voice:     voice.New(cfg),
		Image:     visuals.NewUnsplashFetcher(cfg),
		Subtitles: subtitles.New(cfg, exec),
		Render:    render.New(cfg, exec),
		Metadata:  metadata.New(cfg, os.Getenv("OPENAI_API_KEY")),
		Publish:   upload.New(cfg, upload.CredentialsFromEnv()),
	}

	if topics, err := research.NewReadonly(os.Getenv("REDDIT_USER_AGENT")); err != nil {
		log.Printf("[studio] Warning: topic suggestions unavailable: %v", err)
	} else {
		stages.Topics = topics
	}

	keys := Keys{
		Typecast: os.Getenv("TYPECAST_API_KEY"),
		Unsplash: os.Getenv("UNSPLASH_ACCESS_KEY"),
	}
	return New(cfg, store, stages, keys)
}
