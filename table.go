package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"shorts-studio/session"
	"shorts-studio/types"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderStatus lists each stage with its output, "-" when absent
func renderStatus(st session.State) string {
	rows := [][]string{
		{"phase", string(st.Phase())},
		{"topic", orDash(st.Topic)},
		{"script", words(st.EditedScript)},
		{"audio", artifactPath(st.Audio)},
		{"image", artifactPath(st.Image)},
		{"subtitles", transcriptSummary(st.Transcript)},
		{"video", artifactPath(st.Video)},
		{"metadata", metadataTitle(st.Metadata)},
		{"published", publicationURL(st.Publication)},
	}
	return renderTable([]string{"Stage", "Output"}, rows, nil)
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func words(s *string) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%d words", len(strings.Fields(*s)))
}

func artifactPath(a *types.Artifact) string {
	if a == nil {
		return "-"
	}
	return a.Path
}

func transcriptSummary(t *types.Transcript) string {
	if t == nil {
		return "-"
	}
	if len(t.Segments) == 0 {
		return "no speech"
	}
	return fmt.Sprintf("%d segments", len(t.Segments))
}

func metadataTitle(m *types.VideoMetadata) string {
	if m == nil {
		return "-"
	}
	return m.Title
}

func publicationURL(p *types.Publication) string {
	if p == nil {
		return "-"
	}
	return p.URL
}
