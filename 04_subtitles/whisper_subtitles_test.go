package subtitles

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"shorts-studio/config"
	"shorts-studio/stage"
	"shorts-studio/types"
)

// fakeWhisper writes a canned JSON result where the real CLI would
type fakeWhisper struct {
	output string
	err    error
	name   string
	args   []string
}

func (f *fakeWhisper) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.name = name
	f.args = args
	if f.err != nil {
		return "", f.err
	}
	if f.output == "" {
		return "", nil
	}
	var outDir string
	for i, a := range args {
		if a == "--output_dir" && i+1 < len(args) {
			outDir = args[i+1]
		}
	}
	base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	return "", os.WriteFile(filepath.Join(outDir, base+".json"), []byte(f.output), 0o644)
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "narration.mp3")
	if err := os.WriteFile(path, []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractParsesSegmentsInOrder(t *testing.T) {
	fake := &fakeWhisper{output: `{"text":"...","segments":[
		{"id":0,"start":0.0,"end":2.4,"text":" Dim your screen. "},
		{"id":1,"start":2.0,"end":4.5,"text":" Turn off background refresh."},
		{"id":2,"start":4.5,"end":6.0,"text":"Use low power mode."}
	]}`}
	cfg := config.Default()

	got, err := New(cfg, fake).Extract(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := []types.Segment{
		{Start: 0, End: 2.4, Text: "Dim your screen."},
		{Start: 2.0, End: 4.5, Text: "Turn off background refresh."},
		{Start: 4.5, End: 6.0, Text: "Use low power mode."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}

	if fake.name != "whisper" {
		t.Fatalf("binary = %q", fake.name)
	}
	joined := strings.Join(fake.args, " ")
	for _, want := range []string{"--model base", "--output_format json"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
}

func TestExtractSilenceIsEmptyNotNil(t *testing.T) {
	fake := &fakeWhisper{output: `{"text":"","segments":[]}`}
	got, err := New(config.Default(), fake).Extract(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("segments = %#v, want empty non-nil", got)
	}
}

func TestExtractDropsInvertedSegments(t *testing.T) {
	fake := &fakeWhisper{output: `{"segments":[
		{"start":1.0,"end":1.0,"text":"zero"},
		{"start":3.0,"end":2.0,"text":"backwards"},
		{"start":3.0,"end":4.0,"text":"ok"}
	]}`}
	got, err := New(config.Default(), fake).Extract(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Text != "ok" {
		t.Fatalf("segments = %+v", got)
	}
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeWhisper
		want error
	}{
		{"whisper exits non-zero", &fakeWhisper{err: errors.New("exit status 1")}, stage.ErrLocal},
		{"no output file", &fakeWhisper{}, stage.ErrLocal},
		{"segments absent", &fakeWhisper{output: `{"text":"hi"}`}, stage.ErrMalformed},
		{"garbage", &fakeWhisper{output: `not json`}, stage.ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(config.Default(), tt.fake).Extract(context.Background(), writeAudio(t))
			if got != nil {
				t.Fatalf("segments = %+v, want nil", got)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExtractMissingAudio(t *testing.T) {
	fake := &fakeWhisper{}
	_, err := New(config.Default(), fake).Extract(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"))
	if !errors.Is(err, stage.ErrLocal) {
		t.Fatalf("error = %v", err)
	}
	if fake.name != "" {
		t.Fatal("whisper invoked for missing audio")
	}
}

func TestDumpAndSRT(t *testing.T) {
	segs := []types.Segment{
		{Start: 0, End: 2.5, Text: "first"},
		{Start: 61.25, End: 3725.5, Text: "second"},
	}
	if got := Dump(segs); got != "[0.0~2.5] first\n[61.2~3725.5] second" && got != "[0.0~2.5] first\n[61.3~3725.5] second" {
		t.Fatalf("Dump() = %q", got)
	}

	path := filepath.Join(t.TempDir(), "narration.srt")
	if err := WriteSRT(path, segs); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	want := "1\n00:00:00,000 --> 00:00:02,500\nfirst\n\n2\n00:01:01,250 --> 01:02:05,500\nsecond\n\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Fatalf("srt mismatch (-want +got):\n%s", diff)
	}
}

func TestSRTPath(t *testing.T) {
	if got := SRTPath(filepath.Join("audio", "abc.mp3")); got != filepath.Join("audio", "abc.srt") {
		t.Fatalf("SRTPath() = %q", got)
	}
}
