// Package studio sequences the pipeline stages over one session state.
package studio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"shorts-studio/02_voice"
	"shorts-studio/04_subtitles"
	"shorts-studio/05_render"
	"shorts-studio/artifact"
	"shorts-studio/config"
	"shorts-studio/session"
	"shorts-studio/stage"
	"shorts-studio/types"
)

// ErrPrerequisite wraps the session.ErrNo* reason a stage cannot run yet
var ErrPrerequisite = errors.New("missing prerequisite")

// ScriptWriter drafts the narration for a topic
type ScriptWriter interface {
	Generate(ctx context.Context, topic string) (string, error)
}

// VoiceSynthesizer turns narration text into an audio file
type VoiceSynthesizer interface {
	Synthesize(ctx context.Context, req voice.Request) error
}

// ImageFetcher downloads a background photo for a keyword
type ImageFetcher interface {
	Fetch(ctx context.Context, keyword, accessKey, savePath string) error
}

// SubtitleExtractor transcribes narration into timed segments
type SubtitleExtractor interface {
	Extract(ctx context.Context, audioPath string) ([]types.Segment, error)
}

// VideoRenderer composites the final video
type VideoRenderer interface {
	Render(ctx context.Context, req render.Request) error
}

// MetadataGenerator writes the upload title, description and tags
type MetadataGenerator interface {
	Generate(ctx context.Context, topic, script string) (*types.VideoMetadata, error)
}

// Publisher uploads a rendered video
type Publisher interface {
	Upload(ctx context.Context, videoPath string, meta *types.VideoMetadata) (*types.Publication, error)
}

// TopicSuggester proposes topics
type TopicSuggester interface {
	Suggest(ctx context.Context, subreddits []string, limit int) ([]string, error)
}

// Stages holds one handler per pipeline step
type Stages struct {
	Script    ScriptWriter
	Voice     VoiceSynthesizer
	Image     ImageFetcher
	Subtitles SubtitleExtractor
	Render    VideoRenderer
	Metadata  MetadataGenerator
	Publish   Publisher
	Topics    TopicSuggester
}

// Keys are the per-request credentials of the REST stages
type Keys struct {
	Typecast string
	Unsplash string
}

// Studio owns the session state and runs one stage at a time
type Studio struct {
	mu     sync.Mutex
	cfg    *config.Config
	store  session.Store
	state  *session.State
	stages Stages
	keys   Keys
}

// New loads the session from store and wires the stage handlers
func New(cfg *config.Config, store session.Store, stages Stages, keys Keys) (*Studio, error) {
	st, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &Studio{cfg: cfg, store: store, state: st, stages: stages, keys: keys}, nil
}

// State returns a copy of the current session
func (s *Studio) State() session.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Config exposes the configuration the studio was built with
func (s *Studio) Config() *config.Config {
	return s.cfg
}

// GenerateScript drafts a script for topic and makes it the editable script
func (s *Studio) GenerateScript(ctx context.Context, topic string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.stages.Script.Generate(ctx, topic)
	if err != nil {
		return "", s.fail(stage.Script, s.cfg.Script.ErrorLog, err)
	}

	err = s.commit(func(st *session.State) {
		st.SetTopic(topic)
		st.SetScript(text)
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// EditScript replaces the narration the voice stage will read
func (s *Studio) EditScript(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(func(st *session.State) {
		st.SetEditedScript(text)
	})
}

// SynthesizeVoice narrates the edited script into a new audio artifact
func (s *Studio) SynthesizeVoice(ctx context.Context) (types.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.RequireNarration(); err != nil {
		return types.Artifact{}, prerequisite(err)
	}

	audio := types.NewArtifact(types.KindAudio, s.cfg.Paths.Audio)
	err := s.stages.Voice.Synthesize(ctx, voice.Request{
		Text:   s.state.NarrationText(),
		APIKey: s.keys.Typecast,
		Path:   audio.Path,
		Voice:  s.cfg.Voice.DefaultVoice,
	})
	if err != nil {
		return types.Artifact{}, s.fail(stage.Voice, audio.Path, err)
	}

	if err := s.commit(func(st *session.State) { st.Audio = &audio }); err != nil {
		return types.Artifact{}, err
	}
	return audio, nil
}

// FetchImage downloads a photo for topic, or for the session topic when topic is empty
func (s *Studio) FetchImage(ctx context.Context, topic string) (types.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keyword := topic
	if keyword == "" {
		keyword = s.state.TopicText()
	}

	img := types.NewArtifact(types.KindImage, s.cfg.Paths.Assets)
	if err := s.stages.Image.Fetch(ctx, keyword, s.keys.Unsplash, img.Path); err != nil {
		return types.Artifact{}, s.fail(stage.Image, img.Path, err)
	}

	if err := s.commit(func(st *session.State) { st.Image = &img }); err != nil {
		return types.Artifact{}, err
	}
	return img, nil
}

// ExtractSubtitles transcribes the current audio. A transcript with no
// segments means the audio held no speech.
func (s *Studio) ExtractSubtitles(ctx context.Context) (*types.Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.RequireAudio(); err != nil {
		return nil, prerequisite(err)
	}
	audio := *s.state.Audio

	segments, err := s.stages.Subtitles.Extract(ctx, audio.Path)
	if err != nil {
		return nil, s.fail(stage.Subtitles, audio.Path, err)
	}
	if segments == nil {
		segments = []types.Segment{}
	}

	transcript := &types.Transcript{AudioID: audio.ID, Segments: segments}
	srtPath := subtitles.SRTPath(audio.Path)
	if err := subtitles.WriteSRT(srtPath, segments); err != nil {
		log.Printf("[studio] Warning: could not write %s: %v", srtPath, err)
	} else {
		transcript.SRTPath = srtPath
	}

	if err := s.commit(func(st *session.State) { st.Transcript = transcript }); err != nil {
		return nil, err
	}
	c := *transcript
	c.Segments = append([]types.Segment{}, segments...)
	return &c, nil
}

// RenderVideo composites image, audio and subtitles into a new video artifact
func (s *Studio) RenderVideo(ctx context.Context) (types.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.RequireRenderInputs(); err != nil {
		return types.Artifact{}, prerequisite(err)
	}

	video := types.NewArtifact(types.KindVideo, s.cfg.Paths.Output)
	err := s.stages.Render.Render(ctx, render.Request{
		ImagePath:  s.state.Image.Path,
		AudioPath:  s.state.Audio.Path,
		Segments:   s.state.Transcript.Segments,
		OutputPath: video.Path,
	})
	if err != nil {
		return types.Artifact{}, s.fail(stage.Render, video.Path, err)
	}

	if err := s.commit(func(st *session.State) { st.Video = &video }); err != nil {
		return types.Artifact{}, err
	}
	return video, nil
}

// GenerateMetadata writes upload metadata for the rendered video
func (s *Studio) GenerateMetadata(ctx context.Context) (*types.VideoMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.RequireVideo(); err != nil {
		return nil, prerequisite(err)
	}
	if s.stages.Metadata == nil {
		return nil, s.fail(stage.Metadata, s.state.Video.Path, stage.Local(stage.Metadata, "metadata generation not configured", nil))
	}

	meta, err := s.stages.Metadata.Generate(ctx, s.state.TopicText(), s.state.NarrationText())
	if err != nil {
		return nil, s.fail(stage.Metadata, s.state.Video.Path, err)
	}

	if err := s.commit(func(st *session.State) { st.Metadata = meta }); err != nil {
		return nil, err
	}
	c := *meta
	return &c, nil
}

// Publish uploads the rendered video with its metadata
func (s *Studio) Publish(ctx context.Context) (*types.Publication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.RequirePublishable(); err != nil {
		return nil, prerequisite(err)
	}
	if s.stages.Publish == nil {
		return nil, s.fail(stage.Publish, s.state.Video.Path, stage.Local(stage.Publish, "upload not configured", nil))
	}

	pub, err := s.stages.Publish.Upload(ctx, s.state.Video.Path, s.state.Metadata)
	if err != nil {
		return nil, s.fail(stage.Publish, s.state.Video.Path, err)
	}

	if err := s.commit(func(st *session.State) { st.Publication = pub }); err != nil {
		return nil, err
	}
	c := *pub
	return &c, nil
}

// SuggestTopics lists topic ideas; it never touches the session
func (s *Studio) SuggestTopics(ctx context.Context) ([]string, error) {
	if s.stages.Topics == nil {
		return nil, errors.New("topic suggestions not configured")
	}
	return s.stages.Topics.Suggest(ctx, s.cfg.Research.Subreddits, s.cfg.Research.Limit)
}

// Run executes the five core stages in order and stops at the first failure
func (s *Studio) Run(ctx context.Context, topic string) (session.State, error) {
	steps := []struct {
		name string
		run  func() error
	}{
		{"script", func() error { _, err := s.GenerateScript(ctx, topic); return err }},
		{"voice", func() error { _, err := s.SynthesizeVoice(ctx); return err }},
		{"image", func() error { _, err := s.FetchImage(ctx, topic); return err }},
		{"subtitles", func() error { _, err := s.ExtractSubtitles(ctx); return err }},
		{"render", func() error { _, err := s.RenderVideo(ctx); return err }},
	}
	for i, step := range steps {
		log.Printf("\n━━━ STAGE %d: %s ━━━", i+1, step.name)
		if err := step.run(); err != nil {
			return s.State(), err
		}
	}
	return s.State(), nil
}

// commit applies mutate to a copy, persists it and only then makes it current
func (s *Studio) commit(mutate func(*session.State)) error {
	next := s.state.Clone()
	mutate(&next)
	if err := s.store.Save(&next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.state = &next
	return nil
}

// fail records the failure next to target and returns it as a *stage.Error
func (s *Studio) fail(name stage.Name, target string, err error) error {
	se, ok := stage.As(err)
	if !ok {
		se = stage.Local(name, "unexpected failure", err)
	}
	logPath := artifact.Record(target, se)
	log.Printf("[%s] ❌ %s (details: %s): %v", name, se.UserMessage(), logPath, err)
	return se
}

func prerequisite(err error) error {
	return fmt.Errorf("%w: %w", ErrPrerequisite, err)
}
