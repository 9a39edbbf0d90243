package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shorts-studio/04_subtitles"
	"shorts-studio/server"
)

func newScriptCommand(ctx *commandContext) *cobra.Command {
	var topic string
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Generate a narration script for a topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureStudio(cmd.Context())
			if err != nil {
				return err
			}
			text, err := s.GenerateScript(cmd.Context(), topic)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "Video topic")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "edit [text]",
		Short: "Replace the script the voice stage will read (from text, --file, or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			switch {
			case len(args) == 1 && file != "":
				return errors.New("pass either text or --file, not both")
			case len(args) == 1:
				text = args[0]
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read script file: %w", err)
				}
				text = string(data)
			default:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			s, err := ctx.ensureStudio(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.EditScript(text); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Script updated (%d words)\n", len(strings.Fields(text)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the script from a file")
	return cmd
}

func newVoiceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "voice",
		Short: "Synthesize narration audio from the edited script",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureStudio(cmd.Context())
			if err != nil {
				return err
			}
			audio, err := s.SynthesizeVoice(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Audio: %s\n", audio.Path)
			return nil
		},
	}
}

func newImageCommand(ctx *commandContext) *cobra.Command {
	var topic string
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Download a background photo for the topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureStudio(cmd.Context())
			if err != nil {
				return err
			}
			img, err := s.FetchImage(cmd.Context(), topic)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Image: %s\n", img.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "Search keyword (defaults to the session topic)")
	return cmd
}

func newSubtitlesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "subtitles",
		Short: "Transcribe the narration into timed subtitles",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureStudio(cmd.Context())
			if err != nil {
				return err
			}
			tr, err := s.ExtractSubtitles(cmd.Context())
			if err != nil {
				return err
			}
			if len(tr.Segments) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No speech found")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), subtitles.Dump(tr.Segments))
			return nil
		},
	}
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Composite image, narration and subtitles into an MP4",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureStudio(cmd.Context())
			if err != nil {
				return err
			}
			video, err := s.RenderVideo(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Video: %s\n", video.Path)
			return nil
		},
	}
}

func newMetadataCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Generate a title, description and tags for the rendered video",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureStudio(cmd.Context())
			if err != nil {
				return err
			}
			meta, err := s.GenerateMetadata(cmd.Context())
			if err != nil {
				return err
			}
			rows := [][]string{
				{"Title", meta.Title},
				{"Tags", strings.Join(meta.Tags, ", ")},
				{"Category", meta.CategoryID},
				{"Visibility", meta.Visibility},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			fmt.Fprintln(cmd.OutOrStdout(), meta.Description)
			return nil
		},
	}
}

func newPublishCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Upload the rendered video to YouTube",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureStudio(cmd.Context())
			if err != nil {
				return err
			}
			pub, err := s.Publish(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published: %s\n", pub.URL)
			return nil
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var topic string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run script, voice, image, subtitles and render in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureStudio(cmd.Context())
			if err != nil {
				return err
			}
			st, err := s.Run(cmd.Context(), topic)
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(st))
			if err != nil {
				return err
			}
			log.Printf("✅ Pipeline complete! Video: %s", st.Video.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "Video topic")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what each stage has produced",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureStudio(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(s.State()))
			return nil
		},
	}
}

func newTopicsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "Suggest topics from trending Reddit posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureStudio(cmd.Context())
			if err != nil {
				return err
			}
			topics, err := s.SuggestTopics(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(topics))
			for i, t := range topics {
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), t})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"#", "Topic"}, rows, []columnAlignment{alignRight, alignLeft}))
			return nil
		},
	}
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stages over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureStudio(cmd.Context())
			if err != nil {
				return err
			}
			if addr == "" {
				addr = s.Config().Server.Addr
			}
			log.Printf("🎬 Shorts studio listening on %s", addr)
			return server.NewRouter(s).Run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr)")
	return cmd
}
