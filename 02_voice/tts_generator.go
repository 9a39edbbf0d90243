package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"shorts-studio/config"
	"shorts-studio/stage"
)

// Request describes one narration to synthesize
type Request struct {
	Text   string
	APIKey string
	Path   string
	Voice  string
}

// Synthesizer handles Typecast TTS audio generation
type Synthesizer struct {
	cfg        *config.Config
	httpClient *http.Client
}

// New creates a new Synthesizer. The HTTP client carries no timeout of its own.
func New(cfg *config.Config) *Synthesizer {
	return &Synthesizer{cfg: cfg, httpClient: &http.Client{}}
}

// WithHTTPClient overrides the HTTP client
func (s *Synthesizer) WithHTTPClient(client *http.Client) *Synthesizer {
	if client != nil {
		s.httpClient = client
	}
	return s
}

type speakRequest struct {
	Voice  string  `json:"voice"`
	Text   string  `json:"text"`
	Speed  float64 `json:"speed"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
	Format string  `json:"format"`
}

// Synthesize sends one request and writes the audio to req.Path only on HTTP 200.
// A nil return is the success signal.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) error {
	voice := req.Voice
	if voice == "" {
		voice = s.cfg.Voice.DefaultVoice
	}
	log.Printf("[voice] Synthesizing %d chars with voice %q...", len(req.Text), voice)

	bodyBytes, err := json.Marshal(speakRequest{
		Voice:  voice,
		Text:   req.Text,
		Speed:  s.cfg.Voice.Speed,
		Pitch:  s.cfg.Voice.Pitch,
		Volume: s.cfg.Voice.Volume,
		Format: s.cfg.Voice.Format,
	})
	if err != nil {
		return stage.Local(stage.Voice, "marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Voice.Endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return stage.Local(stage.Voice, "build request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return stage.Service(stage.Voice, "typecast request", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return stage.Service(stage.Voice, "read typecast response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return stage.Service(stage.Voice, fmt.Sprintf("typecast returned HTTP %d", resp.StatusCode), nil).
			WithBody(string(payload))
	}

	if err := os.MkdirAll(filepath.Dir(req.Path), 0o755); err != nil {
		return stage.Local(stage.Voice, "create audio dir", err)
	}
	if err := os.WriteFile(req.Path, payload, 0o644); err != nil {
		return stage.Local(stage.Voice, "write audio", err)
	}

	log.Printf("[voice] ✅ Audio saved: %s (%d bytes)", req.Path, len(payload))
	return nil
}
