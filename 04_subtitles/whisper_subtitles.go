package subtitles

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"shorts-studio/config"
	"shorts-studio/executor"
	"shorts-studio/stage"
	"shorts-studio/types"
)

// Extractor transcribes narration audio into timed segments with the whisper CLI
type Extractor struct {
	cfg      *config.Config
	executor executor.Executor
}

// New creates a new subtitle Extractor
func New(cfg *config.Config, exec executor.Executor) *Extractor {
	return &Extractor{cfg: cfg, executor: exec}
}

type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type whisperOutput struct {
	Text     string            `json:"text"`
	Segments *[]whisperSegment `json:"segments"`
}

// Extract runs whisper on audioPath. A run that hears no speech returns an
// empty, non-nil slice; any failure is returned as an error.
func (e *Extractor) Extract(ctx context.Context, audioPath string) ([]types.Segment, error) {
	log.Println("[subtitles] Running Whisper transcription...")

	if _, err := os.Stat(audioPath); err != nil {
		return nil, stage.Local(stage.Subtitles, "audio not readable", err)
	}

	outputDir, err := os.MkdirTemp("", "whisper-")
	if err != nil {
		return nil, stage.Local(stage.Subtitles, "create temp dir", err)
	}
	defer os.RemoveAll(outputDir)

	args := []string{
		audioPath,
		"--model", e.cfg.Subtitles.WhisperModel,
		"--output_format", "json",
		"--output_dir", outputDir,
	}
	if e.cfg.Subtitles.Language != "" {
		args = append(args, "--language", e.cfg.Subtitles.Language)
	}

	if _, err := e.executor.Execute(ctx, e.cfg.Subtitles.WhisperBinary, args...); err != nil {
		return nil, stage.Local(stage.Subtitles, "whisper failed", err)
	}

	// Whisper saves as <audioFilename>.json
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	raw, err := os.ReadFile(filepath.Join(outputDir, base+".json"))
	if err != nil {
		return nil, stage.Local(stage.Subtitles, "whisper produced no output", err)
	}

	segments, err := parseSegments(raw)
	if err != nil {
		return nil, err
	}

	log.Printf("[subtitles] ✅ %d segments extracted", len(segments))
	return segments, nil
}

func parseSegments(raw []byte) ([]types.Segment, error) {
	var out whisperOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, stage.Malformed(stage.Subtitles, "decode whisper output", err)
	}
	if out.Segments == nil {
		return nil, stage.Malformed(stage.Subtitles, "whisper output has no segments", nil)
	}

	valid := lo.Filter(*out.Segments, func(s whisperSegment, i int) bool {
		if s.End <= s.Start {
			log.Printf("[subtitles] Warning: dropping segment %d with end %.2f <= start %.2f", i, s.End, s.Start)
			return false
		}
		return true
	})

	return lo.Map(valid, func(s whisperSegment, _ int) types.Segment {
		return types.Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)}
	}), nil
}

// Dump renders segments one per line as "[start~end] text"
func Dump(segments []types.Segment) string {
	return strings.Join(lo.Map(segments, func(s types.Segment, _ int) string {
		return s.String()
	}), "\n")
}

// WriteSRT writes segments as a SubRip file
func WriteSRT(path string, segments []types.Segment) error {
	var sb strings.Builder
	for i, s := range segments {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(s.Start), srtTimestamp(s.End), s.Text)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create srt dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// SRTPath places the subtitle file next to the audio it was extracted from
func SRTPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".srt"
}

func srtTimestamp(sec float64) string {
	ms := int64(sec*1000 + 0.5)
	h := ms / 3_600_000
	ms %= 3_600_000
	m := ms / 60_000
	ms %= 60_000
	s := ms / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
