package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"shorts-studio/session"
	"shorts-studio/stage"
	"shorts-studio/studio"
	"shorts-studio/types"
)

type fakePipeline struct {
	state    session.State
	err      error
	topic    string
	edited   string
	segments []types.Segment
}

func (f *fakePipeline) State() session.State { return f.state.Clone() }

func (f *fakePipeline) GenerateScript(ctx context.Context, topic string) (string, error) {
	f.topic = topic
	if f.err != nil {
		return "", f.err
	}
	f.state.SetScript("Dim your screen.")
	return "Dim your screen.", nil
}

func (f *fakePipeline) EditScript(text string) error {
	f.edited = text
	f.state.SetEditedScript(text)
	return nil
}

func (f *fakePipeline) SynthesizeVoice(ctx context.Context) (types.Artifact, error) {
	return types.Artifact{ID: "a", Kind: types.KindAudio, Path: "audio/a.mp3"}, f.err
}

func (f *fakePipeline) FetchImage(ctx context.Context, topic string) (types.Artifact, error) {
	f.topic = topic
	return types.Artifact{ID: "i", Kind: types.KindImage, Path: "assets/i.jpg"}, f.err
}

func (f *fakePipeline) ExtractSubtitles(ctx context.Context) (*types.Transcript, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.Transcript{AudioID: "a", Segments: f.segments}, nil
}

func (f *fakePipeline) RenderVideo(ctx context.Context) (types.Artifact, error) {
	return types.Artifact{ID: "v", Kind: types.KindVideo, Path: "output/v.mp4"}, f.err
}

func (f *fakePipeline) GenerateMetadata(ctx context.Context) (*types.VideoMetadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.VideoMetadata{Title: "t"}, nil
}

func (f *fakePipeline) Publish(ctx context.Context) (*types.Publication, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.Publication{VideoID: "abc"}, nil
}

func (f *fakePipeline) SuggestTopics(ctx context.Context) ([]string, error) {
	return []string{"Honey never spoils"}, f.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return m
}

func TestGenerateScriptRoute(t *testing.T) {
	p := &fakePipeline{}
	w := do(t, NewRouter(p), http.MethodPost, "/script", `{"topic":"battery saving tips"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body)
	}
	if decode(t, w)["script"] != "Dim your screen." || p.topic != "battery saving tips" {
		t.Fatalf("body = %s topic = %q", w.Body, p.topic)
	}
}

func TestEditScriptRoute(t *testing.T) {
	p := &fakePipeline{}
	router := NewRouter(p)

	if w := do(t, router, http.MethodPut, "/script", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing script: status = %d", w.Code)
	}
	w := do(t, router, http.MethodPut, "/script", `{"script":""}`)
	if w.Code != http.StatusOK || p.edited != "" {
		t.Fatalf("status = %d edited = %q", w.Code, p.edited)
	}
	if p.state.EditedScript == nil {
		t.Fatal("empty edit not stored")
	}
}

func TestSessionRoute(t *testing.T) {
	p := &fakePipeline{}
	p.state.SetScript("x")
	w := do(t, NewRouter(p), http.MethodGet, "/session", "")
	body := decode(t, w)
	if body["phase"] != string(session.PhaseScripted) {
		t.Fatalf("phase = %v", body["phase"])
	}
	st, _ := body["state"].(map[string]any)
	if _, present := st["audio"]; !present || st["audio"] != nil {
		t.Fatalf("audio = %v, want explicit null", st["audio"])
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"prerequisite", fmt.Errorf("%w: %w", studio.ErrPrerequisite, session.ErrNoAudio), http.StatusConflict, ""},
		{"service", stage.Service(stage.Render, "x", nil), http.StatusBadGateway, "video rendering failed"},
		{"malformed", stage.Malformed(stage.Render, "x", nil), http.StatusBadGateway, "video rendering failed"},
		{"local", stage.Local(stage.Render, "ffmpeg failed", nil), http.StatusInternalServerError, "video rendering failed"},
		{"other", errors.New("save session: disk full"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, NewRouter(&fakePipeline{err: tt.err}), http.MethodPost, "/render", "")
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.msg != "" && decode(t, w)["error"] != tt.msg {
				t.Fatalf("body = %s", w.Body)
			}
		})
	}
}

func TestVoiceErrorShowsTypecastBody(t *testing.T) {
	err := stage.Service(stage.Voice, "typecast returned HTTP 402", nil).WithBody("insufficient credits")
	w := do(t, NewRouter(&fakePipeline{err: err}), http.MethodPost, "/voice", "")
	if w.Code != http.StatusBadGateway || decode(t, w)["error"] != "typecast api error: insufficient credits" {
		t.Fatalf("status = %d body = %s", w.Code, w.Body)
	}
}

func TestImageRouteTopicIsOptional(t *testing.T) {
	p := &fakePipeline{}
	router := NewRouter(p)
	if w := do(t, router, http.MethodPost, "/image", ""); w.Code != http.StatusOK || p.topic != "" {
		t.Fatalf("status = %d topic = %q", w.Code, p.topic)
	}
	if w := do(t, router, http.MethodPost, "/image", `{"topic":"cats"}`); w.Code != http.StatusOK || p.topic != "cats" {
		t.Fatalf("status = %d topic = %q", w.Code, p.topic)
	}
}

func TestSubtitlesRouteIncludesDump(t *testing.T) {
	p := &fakePipeline{segments: []types.Segment{{Start: 0, End: 1.5, Text: "hi"}}}
	w := do(t, NewRouter(p), http.MethodPost, "/subtitles", "")
	if decode(t, w)["text"] != "[0.0~1.5] hi" {
		t.Fatalf("body = %s", w.Body)
	}
}

func TestDownloadAndPreview(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "v.mp4")
	if err := os.WriteFile(video, []byte("mp4-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := &fakePipeline{}
	router := NewRouter(p)

	if w := do(t, router, http.MethodGet, "/download", ""); w.Code != http.StatusNotFound {
		t.Fatalf("download without video: status = %d", w.Code)
	}

	p.state.Video = &types.Artifact{ID: "v", Kind: types.KindVideo, Path: video}
	w := do(t, router, http.MethodGet, "/download", "")
	if w.Code != http.StatusOK || w.Body.String() != "mp4-bytes" {
		t.Fatalf("status = %d body = %q", w.Code, w.Body)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, DownloadName) {
		t.Fatalf("Content-Disposition = %q", cd)
	}

	if w := do(t, router, http.MethodGet, "/artifacts/video", ""); w.Code != http.StatusOK {
		t.Fatalf("preview status = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/artifacts/audio", ""); w.Code != http.StatusNotFound {
		t.Fatalf("absent audio preview status = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/artifacts/bogus", ""); w.Code != http.StatusNotFound {
		t.Fatalf("bogus kind status = %d", w.Code)
	}
}

func TestTopicsRoute(t *testing.T) {
	w := do(t, NewRouter(&fakePipeline{}), http.MethodGet, "/topics", "")
	topics, _ := decode(t, w)["topics"].([]any)
	if len(topics) != 1 || topics[0] != "Honey never spoils" {
		t.Fatalf("body = %s", w.Body)
	}
}
