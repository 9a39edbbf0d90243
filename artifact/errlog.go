// Package artifact manages the on-disk layout for stage artifacts and their failure logs.
package artifact

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// sidecarExts are replaced by "_log.txt" when deriving a failure log path
var sidecarExts = []string{".mp4", ".mp3", ".jpg"}

// LogPath derives the failure log location for an artifact path.
// Paths with other extensions are used as the log path itself.
func LogPath(path string) string {
	ext := filepath.Ext(path)
	for _, e := range sidecarExts {
		if strings.EqualFold(ext, e) {
			return strings.TrimSuffix(path, ext) + "_log.txt"
		}
	}
	return path
}

// WriteLog records the full failure, including any stack, next to target.
// It returns the log path written.
func WriteLog(target string, failure error) (string, error) {
	logPath := LogPath(target)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}
	body := fmt.Sprintf("%+v\n", failure)
	if err := os.WriteFile(logPath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write log %s: %w", logPath, err)
	}
	return logPath, nil
}

// EnsureDirs creates the artifact directories if they are absent
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Record writes the failure log and reports where it went; logging problems are only warned about
func Record(target string, failure error) string {
	logPath, err := WriteLog(target, failure)
	if err != nil {
		log.Printf("[artifact] Warning: could not write failure log for %s: %v", target, err)
		return ""
	}
	return logPath
}
