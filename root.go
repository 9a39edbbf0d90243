package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"shorts-studio/artifact"
	"shorts-studio/config"
	"shorts-studio/session"
	"shorts-studio/studio"
)

type studioFactory func(ctx context.Context, cfg *config.Config, store session.Store) (*studio.Studio, error)

type commandContext struct {
	configFlag *string
	newStudio  studioFactory

	once    sync.Once
	cfg     *config.Config
	studio  *studio.Studio
	initErr error
	logFile *os.File
}

func newCommandContext(configFlag *string, factory studioFactory) *commandContext {
	return &commandContext{configFlag: configFlag, newStudio: factory}
}

// ensureStudio loads config, prepares directories and logging, and opens the session once
func (c *commandContext) ensureStudio(ctx context.Context) (*studio.Studio, error) {
	c.once.Do(func() {
		cfg, err := config.Load(*c.configFlag)
		if err != nil {
			c.initErr = fmt.Errorf("load config: %w", err)
			return
		}
		if err := artifact.EnsureDirs(append(cfg.Dirs(), filepath.Dir(cfg.Paths.Session))...); err != nil {
			c.initErr = err
			return
		}
		if cfg.Logging.File != "" {
			f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				c.initErr = fmt.Errorf("open log file: %w", err)
				return
			}
			c.logFile = f
			log.SetOutput(io.MultiWriter(os.Stderr, f))
		}
		c.cfg = cfg
		c.studio, c.initErr = c.newStudio(ctx, cfg, session.NewJSONStore(cfg.Paths.Session))
	})
	return c.studio, c.initErr
}

func (c *commandContext) close() {
	if c.logFile != nil {
		_ = c.logFile.Close()
	}
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(studio.NewFromEnv)
}

func newRootCommandWith(factory studioFactory) *cobra.Command {
	var configFlag string
	ctx := newCommandContext(&configFlag, factory)

	rootCmd := &cobra.Command{
		Use:           "shorts",
		Short:         "Turn a topic into a vertical short video, one stage at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "config.yaml", "Configuration file path")

	rootCmd.AddCommand(newScriptCommand(ctx))
	rootCmd.AddCommand(newEditCommand(ctx))
	rootCmd.AddCommand(newVoiceCommand(ctx))
	rootCmd.AddCommand(newImageCommand(ctx))
	rootCmd.AddCommand(newSubtitlesCommand(ctx))
	rootCmd.AddCommand(newRenderCommand(ctx))
	rootCmd.AddCommand(newMetadataCommand(ctx))
	rootCmd.AddCommand(newPublishCommand(ctx))
	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newTopicsCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))

	return rootCmd
}
