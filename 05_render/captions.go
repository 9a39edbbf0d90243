package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"shorts-studio/types"
)

// caption is one drawtext overlay: wrapped text shown on [start, end)
type caption struct {
	Start    float64
	End      float64
	Text     string
	TextFile string
}

// captionColumns approximates how many display cells fit in the caption box
func captionColumns(boxWidth, fontSize int) int {
	cell := fontSize / 2
	if cell <= 0 {
		cell = 1
	}
	cols := boxWidth / cell
	if cols < 1 {
		cols = 1
	}
	return cols
}

// wrapCaption breaks text into lines no wider than cols display cells.
// Words wider than a whole line are split.
func wrapCaption(text string, cols int) string {
	var lines []string
	var line strings.Builder
	lineWidth := 0

	flush := func() {
		if line.Len() > 0 {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
	}

	for _, word := range strings.Fields(text) {
		w := runewidth.StringWidth(word)
		if w > cols {
			flush()
			parts := strings.Split(runewidth.Wrap(word, cols), "\n")
			lines = append(lines, parts[:len(parts)-1]...)
			line.WriteString(parts[len(parts)-1])
			lineWidth = runewidth.StringWidth(parts[len(parts)-1])
			continue
		}
		if lineWidth > 0 && lineWidth+1+w > cols {
			flush()
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += w
	}
	flush()
	return strings.Join(lines, "\n")
}

// writeCaptions stores each segment's wrapped text in its own file under dir,
// so drawtext never has to escape user text
func writeCaptions(dir string, segments []types.Segment, cols int) ([]caption, error) {
	captions := make([]caption, 0, len(segments))
	for i, seg := range segments {
		text := wrapCaption(seg.Text, cols)
		if text == "" {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("caption_%03d.txt", i))
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return nil, fmt.Errorf("write caption %d: %w", i, err)
		}
		captions = append(captions, caption{Start: seg.Start, End: seg.End, Text: text, TextFile: path})
	}
	return captions, nil
}

// escapeFilterPath escapes a path for use as a filter option value
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.ReplaceAll(path, ":", "\\:")
	path = strings.ReplaceAll(path, "'", "\\'")
	return path
}

// enableExpr shows an overlay while start <= t < end
func enableExpr(start, end float64) string {
	return fmt.Sprintf("gte(t,%.3f)*lt(t,%.3f)", start, end)
}
