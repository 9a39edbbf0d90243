// Package server exposes the studio stages over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"shorts-studio/04_subtitles"
	"shorts-studio/session"
	"shorts-studio/stage"
	"shorts-studio/studio"
	"shorts-studio/types"
)

// DownloadName is the attachment name of the rendered video
const DownloadName = "shorts_output.mp4"

// Pipeline is the set of studio operations the HTTP surface drives
type Pipeline interface {
	State() session.State
	GenerateScript(ctx context.Context, topic string) (string, error)
	EditScript(text string) error
	SynthesizeVoice(ctx context.Context) (types.Artifact, error)
	FetchImage(ctx context.Context, topic string) (types.Artifact, error)
	ExtractSubtitles(ctx context.Context) (*types.Transcript, error)
	RenderVideo(ctx context.Context) (types.Artifact, error)
	GenerateMetadata(ctx context.Context) (*types.VideoMetadata, error)
	Publish(ctx context.Context) (*types.Publication, error)
	SuggestTopics(ctx context.Context) ([]string, error)
}

type Handler struct {
	Pipeline Pipeline
}

func NewHandler(p Pipeline) *Handler {
	return &Handler{Pipeline: p}
}

type topicRequest struct {
	Topic string `json:"topic"`
}

type scriptRequest struct {
	Script *string `json:"script" binding:"required"`
}

// NewRouter registers every route on a gin engine
func NewRouter(p Pipeline) *gin.Engine {
	h := NewHandler(p)
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/session", h.GetSession)
	router.POST("/script", h.GenerateScript)
	router.PUT("/script", h.EditScript)
	router.POST("/voice", h.SynthesizeVoice)
	router.POST("/image", h.FetchImage)
	router.POST("/subtitles", h.ExtractSubtitles)
	router.POST("/render", h.RenderVideo)
	router.POST("/metadata", h.GenerateMetadata)
	router.POST("/publish", h.Publish)
	router.GET("/topics", h.Topics)
	router.GET("/artifacts/:kind", h.Artifact)
	router.GET("/download", h.Download)
	return router
}

func (h *Handler) GetSession(c *gin.Context) {
	st := h.Pipeline.State()
	c.JSON(http.StatusOK, gin.H{"phase": st.Phase(), "state": st})
}

func (h *Handler) GenerateScript(c *gin.Context) {
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text, err := h.Pipeline.GenerateScript(c.Request.Context(), req.Topic)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"script": text})
}

func (h *Handler) EditScript(c *gin.Context) {
	var req scriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Pipeline.EditScript(*req.Script); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"edited_script": *req.Script})
}

func (h *Handler) SynthesizeVoice(c *gin.Context) {
	audio, err := h.Pipeline.SynthesizeVoice(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, audio)
}

func (h *Handler) FetchImage(c *gin.Context) {
	var req topicRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	img, err := h.Pipeline.FetchImage(c.Request.Context(), req.Topic)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, img)
}

func (h *Handler) ExtractSubtitles(c *gin.Context) {
	tr, err := h.Pipeline.ExtractSubtitles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": tr, "text": subtitles.Dump(tr.Segments)})
}

func (h *Handler) RenderVideo(c *gin.Context) {
	video, err := h.Pipeline.RenderVideo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *Handler) GenerateMetadata(c *gin.Context) {
	meta, err := h.Pipeline.GenerateMetadata(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (h *Handler) Publish(c *gin.Context) {
	pub, err := h.Pipeline.Publish(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pub)
}

func (h *Handler) Topics(c *gin.Context) {
	topics, err := h.Pipeline.SuggestTopics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "topic suggestions failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// Artifact previews the current audio, image or video
func (h *Handler) Artifact(c *gin.Context) {
	st := h.Pipeline.State()
	var a *types.Artifact
	switch types.ArtifactKind(c.Param("kind")) {
	case types.KindAudio:
		a = st.Audio
	case types.KindImage:
		a = st.Image
	case types.KindVideo:
		a = st.Video
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown artifact kind"})
		return
	}
	if !servable(a) {
		c.JSON(http.StatusNotFound, gin.H{"error": "artifact not available"})
		return
	}
	c.File(a.Path)
}

// Download sends the rendered video as an attachment
func (h *Handler) Download(c *gin.Context) {
	st := h.Pipeline.State()
	if !servable(st.Video) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no rendered video"})
		return
	}
	c.FileAttachment(st.Video.Path, DownloadName)
}

func servable(a *types.Artifact) bool {
	if a == nil {
		return false
	}
	_, err := os.Stat(a.Path)
	return err == nil
}

// respondError maps missing prerequisites to 409 and stage failures to 502 or 500
func respondError(c *gin.Context, err error) {
	if errors.Is(err, studio.ErrPrerequisite) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if se, ok := stage.As(err); ok {
		status := http.StatusBadGateway
		if se.Kind == stage.KindLocal {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": se.UserMessage(), "stage": se.Stage})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
