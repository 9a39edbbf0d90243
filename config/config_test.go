package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Script.Model != "gpt-4" {
		t.Errorf("script.model = %q, want gpt-4", cfg.Script.Model)
	}
	if cfg.Script.Temperature != 0.7 {
		t.Errorf("script.temperature = %v, want 0.7", cfg.Script.Temperature)
	}
	if cfg.Voice.DefaultVoice != "seoyeon" || cfg.Voice.Format != "mp3" {
		t.Errorf("voice defaults = %+v", cfg.Voice)
	}
	if cfg.Render.Width != 1080 || cfg.Render.Height != 1920 || cfg.Render.FPS != 24 {
		t.Errorf("render defaults = %+v", cfg.Render)
	}
	if cfg.Script.ErrorLog != "output/script_error.txt" {
		t.Errorf("script.error_log = %q", cfg.Script.ErrorLog)
	}
	if got := cfg.Dirs(); len(got) != 3 || got[0] != "audio" || got[1] != "assets" || got[2] != "output" {
		t.Errorf("Dirs() = %v", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
script:
  provider: Gemini
  temperature: 0.2
render:
  fps: 30
paths:
  output: out
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Script.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", cfg.Script.Provider)
	}
	if cfg.Script.Model != "gemini-2.5-flash" {
		t.Errorf("model = %q, want gemini default", cfg.Script.Model)
	}
	if cfg.Script.Temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", cfg.Script.Temperature)
	}
	if cfg.Render.FPS != 30 {
		t.Errorf("fps = %d, want 30", cfg.Render.FPS)
	}
	if cfg.Paths.Session != "out/session.json" {
		t.Errorf("session path = %q", cfg.Paths.Session)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "empty config gets defaults", config: Config{}},
		{
			name:    "unknown provider",
			config:  Config{Script: ScriptConfig{Provider: "llama"}},
			wantErr: true,
		},
		{
			name:    "template without placeholder",
			config:  Config{Script: ScriptConfig{PromptTemplate: "write a script"}},
			wantErr: true,
		},
		{
			name:    "caption wider than frame",
			config:  Config{Render: RenderConfig{Width: 720, CaptionWidth: 1000}},
			wantErr: true,
		},
		{
			name:    "negative fps",
			config:  Config{Render: RenderConfig{FPS: -1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
