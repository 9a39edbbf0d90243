package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Script    ScriptConfig    `yaml:"script"`
	Voice     VoiceConfig     `yaml:"voice"`
	Image     ImageConfig     `yaml:"image"`
	Subtitles SubtitlesConfig `yaml:"subtitles"`
	Render    RenderConfig    `yaml:"render"`
	Metadata  MetadataConfig  `yaml:"metadata"`
	Upload    UploadConfig    `yaml:"upload"`
	Research  ResearchConfig  `yaml:"research"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Paths     PathsConfig     `yaml:"paths"`
}

type ScriptConfig struct {
	Provider       string  `yaml:"provider"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	PromptTemplate string  `yaml:"prompt_template"`
	BaseURL        string  `yaml:"base_url"`
	ErrorLog       string  `yaml:"error_log"`
}

type VoiceConfig struct {
	Endpoint     string  `yaml:"endpoint"`
	DefaultVoice string  `yaml:"default_voice"`
	Speed        float64 `yaml:"speed"`
	Pitch        float64 `yaml:"pitch"`
	Volume       float64 `yaml:"volume"`
	Format       string  `yaml:"format"`
}

type ImageConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type SubtitlesConfig struct {
	WhisperBinary string `yaml:"whisper_binary"`
	WhisperModel  string `yaml:"whisper_model"`
	Language      string `yaml:"language"`
}

type RenderConfig struct {
	FFmpegBinary  string  `yaml:"ffmpeg_binary"`
	FFprobeBinary string  `yaml:"ffprobe_binary"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	DurationSec   float64 `yaml:"duration_sec"`
	FPS           int     `yaml:"fps"`
	VideoCodec    string  `yaml:"video_codec"`
	AudioCodec    string  `yaml:"audio_codec"`
	FontFile      string  `yaml:"font_file"`
	FontSize      int     `yaml:"font_size"`
	FontColor     string  `yaml:"font_color"`
	CaptionWidth  int     `yaml:"caption_width"`
	MarginBottom  int     `yaml:"margin_bottom"`
}

type MetadataConfig struct {
	Model         string `yaml:"model"`
	TitleMaxChars int    `yaml:"title_max_chars"`
	TagsCount     int    `yaml:"tags_count"`
	CategoryID    string `yaml:"category_id"`
}

type UploadConfig struct {
	Visibility        string `yaml:"visibility"`
	NotifySubscribers bool   `yaml:"notify_subscribers"`
	MadeForKids       bool   `yaml:"made_for_kids"`
	DefaultLanguage   string `yaml:"default_language"`
}

type ResearchConfig struct {
	Subreddits []string `yaml:"subreddits"`
	Limit      int      `yaml:"limit"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	File string `yaml:"file"`
}

type PathsConfig struct {
	Audio   string `yaml:"audio"`
	Assets  string `yaml:"assets"`
	Output  string `yaml:"output"`
	Session string `yaml:"session"`
}

// Default returns the configuration used when no config.yaml is present
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// Load reads config.yaml and returns a Config struct.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fills defaults and rejects values the stages cannot work with
func (c *Config) Validate() error {
	c.Script.Provider = strings.ToLower(strings.TrimSpace(c.Script.Provider))
	if c.Script.Provider == "" {
		c.Script.Provider = "openai"
	}
	if c.Script.Provider != "openai" && c.Script.Provider != "gemini" {
		return fmt.Errorf("script.provider must be openai or gemini, got %q", c.Script.Provider)
	}
	if c.Script.Model == "" {
		if c.Script.Provider == "gemini" {
			c.Script.Model = "gemini-2.5-flash"
		} else {
			c.Script.Model = "gpt-4"
		}
	}
	if c.Script.Temperature == 0 {
		c.Script.Temperature = 0.7
	}
	if c.Script.PromptTemplate == "" {
		c.Script.PromptTemplate = "Write a 30-second YouTube Shorts narration script about '%s'."
	}
	if strings.Count(c.Script.PromptTemplate, "%s") != 1 {
		return fmt.Errorf("script.prompt_template must contain exactly one %%s")
	}

	if c.Voice.Endpoint == "" {
		c.Voice.Endpoint = "https://typecast.ai/api/speak"
	}
	if c.Voice.DefaultVoice == "" {
		c.Voice.DefaultVoice = "seoyeon"
	}
	if c.Voice.Speed == 0 {
		c.Voice.Speed = 1.0
	}
	if c.Voice.Pitch == 0 {
		c.Voice.Pitch = 1.0
	}
	if c.Voice.Volume == 0 {
		c.Voice.Volume = 1.0
	}
	if c.Voice.Format == "" {
		c.Voice.Format = "mp3"
	}

	if c.Image.Endpoint == "" {
		c.Image.Endpoint = "https://api.unsplash.com/photos/random"
	}

	if c.Subtitles.WhisperBinary == "" {
		c.Subtitles.WhisperBinary = "whisper"
	}
	if c.Subtitles.WhisperModel == "" {
		c.Subtitles.WhisperModel = "base"
	}

	r := &c.Render
	if r.FFmpegBinary == "" {
		r.FFmpegBinary = "ffmpeg"
	}
	if r.FFprobeBinary == "" {
		r.FFprobeBinary = "ffprobe"
	}
	if r.Width == 0 {
		r.Width = 1080
	}
	if r.Height == 0 {
		r.Height = 1920
	}
	if r.DurationSec == 0 {
		r.DurationSec = 30
	}
	if r.FPS == 0 {
		r.FPS = 24
	}
	if r.VideoCodec == "" {
		r.VideoCodec = "libx264"
	}
	if r.AudioCodec == "" {
		r.AudioCodec = "aac"
	}
	if r.FontSize == 0 {
		r.FontSize = 50
	}
	if r.FontColor == "" {
		r.FontColor = "white"
	}
	if r.CaptionWidth == 0 {
		r.CaptionWidth = 1000
	}
	if r.MarginBottom == 0 {
		r.MarginBottom = 120
	}
	if r.Width < 0 || r.Height < 0 || r.FPS < 0 || r.DurationSec < 0 {
		return fmt.Errorf("render dimensions, fps and duration must be positive")
	}
	if r.CaptionWidth > r.Width {
		return fmt.Errorf("render.caption_width %d exceeds frame width %d", r.CaptionWidth, r.Width)
	}

	if c.Metadata.Model == "" {
		c.Metadata.Model = "gpt-4o-mini"
	}
	if c.Metadata.TitleMaxChars == 0 {
		c.Metadata.TitleMaxChars = 100
	}
	if c.Metadata.TagsCount == 0 {
		c.Metadata.TagsCount = 15
	}
	if c.Metadata.CategoryID == "" {
		c.Metadata.CategoryID = "22"
	}

	if c.Upload.Visibility == "" {
		c.Upload.Visibility = "private"
	}
	if c.Upload.DefaultLanguage == "" {
		c.Upload.DefaultLanguage = "en"
	}

	if len(c.Research.Subreddits) == 0 {
		c.Research.Subreddits = []string{"LifeProTips", "todayilearned"}
	}
	if c.Research.Limit == 0 {
		c.Research.Limit = 10
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}

	if c.Paths.Audio == "" {
		c.Paths.Audio = "audio"
	}
	if c.Paths.Assets == "" {
		c.Paths.Assets = "assets"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
	if c.Paths.Session == "" {
		c.Paths.Session = filepath.Join(c.Paths.Output, "session.json")
	}
	if c.Script.ErrorLog == "" {
		c.Script.ErrorLog = filepath.Join(c.Paths.Output, "script_error.txt")
	}
	return nil
}

// Dirs lists the artifact directories created on startup
func (c *Config) Dirs() []string {
	return []string{c.Paths.Audio, c.Paths.Assets, c.Paths.Output}
}
