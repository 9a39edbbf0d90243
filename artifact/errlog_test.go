package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shorts-studio/stage"
)

func TestLogPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"output/abc.mp4", "output/abc_log.txt"},
		{"audio/abc.mp3", "audio/abc_log.txt"},
		{"assets/abc.jpg", "assets/abc_log.txt"},
		{"assets/ABC.JPG", "assets/ABC_log.txt"},
		{"output/script_error.txt", "output/script_error.txt"},
	}
	for _, tt := range tests {
		if got := LogPath(tt.in); got != tt.want {
			t.Errorf("LogPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteLogCreatesSidecarWithTrace(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "output", "video.mp4")

	failure := stage.Local(stage.Render, "ffmpeg failed", errors.New("exit status 1"))
	logPath, err := WriteLog(target, failure)
	if err != nil {
		t.Fatalf("WriteLog() error = %v", err)
	}
	if logPath != filepath.Join(dir, "output", "video_log.txt") {
		t.Fatalf("log path = %q", logPath)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "exit status 1") || !strings.Contains(string(data), "stage: render") {
		t.Fatalf("log body = %q", data)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatalf("target should not exist, stat err = %v", err)
	}
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	dirs := []string{filepath.Join(root, "audio"), filepath.Join(root, "assets"), filepath.Join(root, "output")}
	if err := EnsureDirs(dirs...); err != nil {
		t.Fatalf("EnsureDirs() error = %v", err)
	}
	for _, d := range dirs {
		if fi, err := os.Stat(d); err != nil || !fi.IsDir() {
			t.Fatalf("%s not created: %v", d, err)
		}
	}
}
