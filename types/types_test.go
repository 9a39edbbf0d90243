package types

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewArtifactNamesFileWithUUID(t *testing.T) {
	tests := []struct {
		kind ArtifactKind
		dir  string
		ext  string
	}{
		{KindAudio, "audio", ".mp3"},
		{KindImage, "assets", ".jpg"},
		{KindVideo, "output", ".mp4"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			a := NewArtifact(tt.kind, tt.dir)
			if filepath.Dir(a.Path) != tt.dir {
				t.Fatalf("dir = %q, want %q", filepath.Dir(a.Path), tt.dir)
			}
			base := filepath.Base(a.Path)
			if !strings.HasSuffix(base, tt.ext) {
				t.Fatalf("path %q does not end with %q", a.Path, tt.ext)
			}
			if _, err := uuid.Parse(strings.TrimSuffix(base, tt.ext)); err != nil {
				t.Fatalf("name %q is not a uuid: %v", base, err)
			}
			if a.ID != strings.TrimSuffix(base, tt.ext) {
				t.Fatalf("id %q does not match file name %q", a.ID, base)
			}
		})
	}
}

func TestNewArtifactIsUnique(t *testing.T) {
	a := NewArtifact(KindAudio, "audio")
	b := NewArtifact(KindAudio, "audio")
	if a.Path == b.Path {
		t.Fatalf("two artifacts share path %q", a.Path)
	}
}

func TestSegmentString(t *testing.T) {
	s := Segment{Start: 1, End: 2.5, Text: "hello"}
	if got, want := s.String(), "[1.0~2.5] hello"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if s.Duration() != 1.5 {
		t.Fatalf("Duration() = %v", s.Duration())
	}
}
