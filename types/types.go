package types

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// ArtifactKind names what a stage wrote to disk
type ArtifactKind string

const (
	KindAudio ArtifactKind = "audio"
	KindImage ArtifactKind = "image"
	KindVideo ArtifactKind = "video"
)

// Extension returns the fixed file extension for the kind
func (k ArtifactKind) Extension() string {
	switch k {
	case KindAudio:
		return ".mp3"
	case KindImage:
		return ".jpg"
	case KindVideo:
		return ".mp4"
	}
	return ""
}

// Artifact is a file written once by the stage that owns it
type Artifact struct {
	ID   string       `json:"id"`
	Kind ArtifactKind `json:"kind"`
	Path string       `json:"path"`
}

// NewArtifact names a fresh artifact of the given kind inside dir
func NewArtifact(kind ArtifactKind, dir string) Artifact {
	id := uuid.NewString()
	return Artifact{
		ID:   id,
		Kind: kind,
		Path: filepath.Join(dir, id+kind.Extension()),
	}
}

// Segment is one timed transcript fragment, offsets in seconds
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns End-Start
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// String formats the segment the way the subtitle preview lists it
func (s Segment) String() string {
	return fmt.Sprintf("[%.1f~%.1f] %s", s.Start, s.End, s.Text)
}

// Transcript is the chronological segment list produced by the subtitle stage.
// A present transcript with no segments means no speech was found.
type Transcript struct {
	AudioID  string    `json:"audio_id"`
	Segments []Segment `json:"segments"`
	SRTPath  string    `json:"srt_path,omitempty"`
}

// VideoMetadata holds all YouTube upload metadata
type VideoMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"category_id"`
	Visibility  string   `json:"visibility"`
}

// Publication records where a rendered video was uploaded
type Publication struct {
	VideoID    string `json:"video_id"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
}
