package render

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"shorts-studio/config"
	"shorts-studio/executor"
	"shorts-studio/stage"
	"shorts-studio/types"
)

// Request lists the inputs of one render
type Request struct {
	ImagePath  string
	AudioPath  string
	Segments   []types.Segment
	OutputPath string
}

// Renderer composites a still image, narration and captions into an MP4
type Renderer struct {
	cfg      *config.Config
	executor executor.Executor
}

// New creates a new Renderer
func New(cfg *config.Config, exec executor.Executor) *Renderer {
	return &Renderer{cfg: cfg, executor: exec}
}

// Render writes the finished video to req.OutputPath
func (r *Renderer) Render(ctx context.Context, req Request) error {
	log.Println("[render] Starting video assembly...")

	for _, in := range []string{req.ImagePath, req.AudioPath} {
		if _, err := os.Stat(in); err != nil {
			return stage.Local(stage.Render, "input not readable", err)
		}
	}

	duration := r.probeDuration(ctx, req.AudioPath)

	workDir, err := os.MkdirTemp("", "render-")
	if err != nil {
		return stage.Local(stage.Render, "create work dir", err)
	}
	defer os.RemoveAll(workDir)

	cols := captionColumns(r.cfg.Render.CaptionWidth, r.cfg.Render.FontSize)
	captions, err := writeCaptions(workDir, req.Segments, cols)
	if err != nil {
		return stage.Local(stage.Render, "prepare captions", err)
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return stage.Local(stage.Render, "create output dir", err)
	}

	args := r.ffmpegArgs(req, captions, duration)
	log.Printf("[render] Encoding %.1fs at %dx%d with %d caption(s)...",
		duration, r.cfg.Render.Width, r.cfg.Render.Height, len(captions))

	if _, err := r.executor.Execute(ctx, r.cfg.Render.FFmpegBinary, args...); err != nil {
		return stage.Local(stage.Render, "ffmpeg failed", err)
	}

	log.Printf("[render] ✅ Video ready: %s", req.OutputPath)
	return nil
}

// probeDuration measures the narration; the configured duration is used when probing fails
func (r *Renderer) probeDuration(ctx context.Context, audioPath string) float64 {
	out, err := r.executor.Execute(ctx, r.cfg.Render.FFprobeBinary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	)
	if err != nil {
		log.Printf("[render] Warning: ffprobe failed: %v, using %.0fs", err, r.cfg.Render.DurationSec)
		return r.cfg.Render.DurationSec
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil || d <= 0 {
		log.Printf("[render] Warning: unusable duration %q, using %.0fs", strings.TrimSpace(out), r.cfg.Render.DurationSec)
		return r.cfg.Render.DurationSec
	}
	return d
}

func (r *Renderer) filterGraph(captions []caption) string {
	rc := r.cfg.Render
	filters := []string{
		fmt.Sprintf("scale=%d:%d", rc.Width, rc.Height),
		"setsar=1",
	}
	for _, c := range captions {
		opts := []string{
			"textfile='" + escapeFilterPath(c.TextFile) + "'",
			"expansion=none",
		}
		if rc.FontFile != "" {
			opts = append(opts, "fontfile='"+escapeFilterPath(rc.FontFile)+"'")
		}
		opts = append(opts,
			fmt.Sprintf("fontsize=%d", rc.FontSize),
			"fontcolor="+rc.FontColor,
			"x=(w-text_w)/2",
			fmt.Sprintf("y=h-text_h-%d", rc.MarginBottom),
			"enable='"+enableExpr(c.Start, c.End)+"'",
		)
		filters = append(filters, "drawtext="+strings.Join(opts, ":"))
	}
	return "[0:v]" + strings.Join(filters, ",") + "[vout]"
}

func (r *Renderer) ffmpegArgs(req Request, captions []caption, duration float64) []string {
	rc := r.cfg.Render
	return []string{"-y",
		"-loop", "1",
		"-i", req.ImagePath,
		"-i", req.AudioPath,
		"-filter_complex", r.filterGraph(captions),
		"-map", "[vout]",
		"-map", "1:a",
		"-t", fmt.Sprintf("%.3f", duration),
		"-r", strconv.Itoa(rc.FPS),
		"-c:v", rc.VideoCodec,
		"-pix_fmt", "yuv420p",
		"-c:a", rc.AudioCodec,
		"-movflags", "+faststart",
		req.OutputPath,
	}
}
