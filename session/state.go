package session

import (
	"errors"
	"strings"

	"shorts-studio/types"
)

// Phase is the furthest point the session has reached.
type Phase string

const (
	PhaseEmpty     Phase = "empty"
	PhaseScripted  Phase = "scripted"
	PhaseVoiced    Phase = "voiced"
	PhaseImaged    Phase = "imaged"
	PhaseSubtitled Phase = "subtitled"
	PhaseRendered  Phase = "rendered"
	PhaseDescribed Phase = "described"
	PhasePublished Phase = "published"
)

// Prerequisite failures returned by the Require* checks.
var (
	ErrNoScript     = errors.New("no script: generate or enter a script first")
	ErrNoAudio      = errors.New("no narration audio: run the voice stage first")
	ErrNoImage      = errors.New("no background image: run the image stage first")
	ErrNoTranscript = errors.New("no subtitles: run the subtitle stage first")
	ErrNoVideo      = errors.New("no rendered video: run the render stage first")
	ErrNoMetadata   = errors.New("no metadata: run the metadata stage first")
)

// State is the record of what completed stages produced. A nil field is absent.
type State struct {
	Topic        *string              `json:"topic"`
	Script       *string              `json:"script"`
	EditedScript *string              `json:"edited_script"`
	Audio        *types.Artifact      `json:"audio"`
	Image        *types.Artifact      `json:"image"`
	Transcript   *types.Transcript    `json:"transcript"`
	Video        *types.Artifact      `json:"video"`
	Metadata     *types.VideoMetadata `json:"metadata"`
	Publication  *types.Publication   `json:"publication"`
}

// Phase reports the furthest stage whose output is present
func (s *State) Phase() Phase {
	switch {
	case s.Publication != nil:
		return PhasePublished
	case s.Metadata != nil:
		return PhaseDescribed
	case s.Video != nil:
		return PhaseRendered
	case s.Transcript != nil:
		return PhaseSubtitled
	case s.Image != nil:
		return PhaseImaged
	case s.Audio != nil:
		return PhaseVoiced
	case s.Script != nil || s.EditedScript != nil:
		return PhaseScripted
	}
	return PhaseEmpty
}

// NarrationText is the edited script the voice stage reads, or "" when absent.
func (s *State) NarrationText() string {
	if s.EditedScript == nil {
		return ""
	}
	return strings.TrimSpace(*s.EditedScript)
}

// RequireNarration gates the voice stage
func (s *State) RequireNarration() error {
	if s.NarrationText() == "" {
		return ErrNoScript
	}
	return nil
}

// RequireAudio gates the subtitle stage
func (s *State) RequireAudio() error {
	if s.Audio == nil {
		return ErrNoAudio
	}
	return nil
}

// RequireRenderInputs gates the render stage
func (s *State) RequireRenderInputs() error {
	var errs []error
	if s.Image == nil {
		errs = append(errs, ErrNoImage)
	}
	if s.Audio == nil {
		errs = append(errs, ErrNoAudio)
	}
	if s.Transcript == nil {
		errs = append(errs, ErrNoTranscript)
	}
	return errors.Join(errs...)
}

// RequireVideo gates the metadata stage
func (s *State) RequireVideo() error {
	if s.Video == nil {
		return ErrNoVideo
	}
	if s.NarrationText() == "" {
		return ErrNoScript
	}
	return nil
}

// RequirePublishable gates the publish stage
func (s *State) RequirePublishable() error {
	if s.Video == nil {
		return ErrNoVideo
	}
	if s.Metadata == nil {
		return ErrNoMetadata
	}
	return nil
}

// SetScript stores a freshly generated script as both the original and the editable copy
func (s *State) SetScript(text string) {
	s.Script = &text
	edited := text
	s.EditedScript = &edited
}

// SetEditedScript stores the user's edit of the script
func (s *State) SetEditedScript(text string) {
	s.EditedScript = &text
}

// SetTopic remembers the topic the user typed
func (s *State) SetTopic(topic string) {
	s.Topic = &topic
}

// TopicText returns the stored topic or ""
func (s *State) TopicText() string {
	if s.Topic == nil {
		return ""
	}
	return *s.Topic
}

// Clone returns a deep copy safe to hand to callers
func (s *State) Clone() State {
	c := State{}
	if s.Topic != nil {
		v := *s.Topic
		c.Topic = &v
	}
	if s.Script != nil {
		v := *s.Script
		c.Script = &v
	}
	if s.EditedScript != nil {
		v := *s.EditedScript
		c.EditedScript = &v
	}
	if s.Audio != nil {
		v := *s.Audio
		c.Audio = &v
	}
	if s.Image != nil {
		v := *s.Image
		c.Image = &v
	}
	if s.Transcript != nil {
		v := *s.Transcript
		v.Segments = append([]types.Segment{}, s.Transcript.Segments...)
		c.Transcript = &v
	}
	if s.Video != nil {
		v := *s.Video
		c.Video = &v
	}
	if s.Metadata != nil {
		v := *s.Metadata
		v.Tags = append([]string(nil), s.Metadata.Tags...)
		c.Metadata = &v
	}
	if s.Publication != nil {
		v := *s.Publication
		c.Publication = &v
	}
	return c
}
