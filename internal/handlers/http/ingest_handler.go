package http

import (
	"net/http"

	"clipgate/internal/core/domain"
	"clipgate/internal/core/ports"
	apperrors "clipgate/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IngestHandler exposes the three ingestion endpoints.
type IngestHandler struct {
	ingest ports.IngestService
	logger *zap.SugaredLogger
}

func NewIngestHandler(ingest ports.IngestService, logger *zap.SugaredLogger) *IngestHandler {
	return &IngestHandler{ingest: ingest, logger: logger}
}

func (h *IngestHandler) Register(r *gin.RouterGroup) {
	r.POST("/ingest/twitch/live", h.TwitchLive)
	r.POST("/ingest/twitch/vod", h.TwitchVOD)
	r.POST("/ingest/youtube/vod", h.YouTubeVOD)
}

type twitchLiveRequest struct {
	UserID         string `json:"user_id" binding:"required,uuid"`
	TwitchUsername string `json:"twitch_username" binding:"required"`
	AutoUpload     bool   `json:"auto_upload"`
}

type twitchVODRequest struct {
	UserID     string `json:"user_id" binding:"required,uuid"`
	TwitchURL  string `json:"twitch_url" binding:"required,url"`
	AutoUpload bool   `json:"auto_upload"`
}

type youtubeVODRequest struct {
	UserID     string `json:"user_id" binding:"required,uuid"`
	VideoURL   string `json:"video_url" binding:"required,url"`
	AutoUpload bool   `json:"auto_upload"`
}

func (h *IngestHandler) TwitchLive(c *gin.Context) {
	var req twitchLiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}
	h.run(c, ports.IngestRequest{
		Source:     domain.SourceTwitchLive,
		UserID:     domain.UserID(req.UserID),
		Identifier: req.TwitchUsername,
		AutoUpload: req.AutoUpload,
	}, "Stream ingestion started")
}

func (h *IngestHandler) TwitchVOD(c *gin.Context) {
	var req twitchVODRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}
	h.run(c, ports.IngestRequest{
		Source:     domain.SourceTwitchVOD,
		UserID:     domain.UserID(req.UserID),
		Identifier: req.TwitchURL,
		AutoUpload: req.AutoUpload,
	}, "Video ingestion started")
}

func (h *IngestHandler) YouTubeVOD(c *gin.Context) {
	var req youtubeVODRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}
	h.run(c, ports.IngestRequest{
		Source:     domain.SourceYouTubeVOD,
		UserID:     domain.UserID(req.UserID),
		Identifier: req.VideoURL,
		AutoUpload: req.AutoUpload,
	}, "Video ingestion started")
}

func (h *IngestHandler) run(c *gin.Context, req ports.IngestRequest, message string) {
	result, err := h.ingest.Ingest(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	data := gin.H{"session": result.Session}
	if req.Source.Live() {
		data["stream_status"] = gin.H{"isLive": true, "viewer_count": result.Meta.ViewerCount}
	} else {
		data["video_status"] = gin.H{"isValid": true, "duration": result.Meta.Duration, "view_count": result.Meta.ViewCount}
	}
	respondSuccess(c, http.StatusCreated, message, data)
}
