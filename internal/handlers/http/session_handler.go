package http

import (
	"errors"
	"net/http"

	"clipgate/internal/core/domain"
	"clipgate/internal/core/ports"
	apperrors "clipgate/pkg/errors"
	"clipgate/pkg/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler exposes the session read, lifecycle and usage
// endpoints.
type SessionHandler struct {
	sessions ports.SessionService
	quota    ports.QuotaService
	logger   *zap.SugaredLogger
}

func NewSessionHandler(sessions ports.SessionService, quota ports.QuotaService, logger *zap.SugaredLogger) *SessionHandler {
	return &SessionHandler{sessions: sessions, quota: quota, logger: logger}
}

func (h *SessionHandler) Register(r *gin.RouterGroup) {
	r.GET("/sessions", h.List)
	r.GET("/sessions/:id", h.Get)
	r.POST("/sessions/:id/end", h.End)
	r.GET("/users/:id/usage", h.Usage)
}

func (h *SessionHandler) List(c *gin.Context) {
	userID := c.Query("user_id")
	if err := validation.ValidateUserID(userID); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}

	sessions, err := h.sessions.ListByUser(c.Request.Context(), domain.UserID(userID))
	if err != nil {
		c.Error(err)
		return
	}
	if sessions == nil {
		sessions = []*domain.StreamSession{}
	}
	respondSuccess(c, http.StatusOK, "Sessions retrieved", gin.H{"sessions": sessions})
}

func (h *SessionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if err := validation.ValidateSessionID(id); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}

	session, err := h.sessions.Get(c.Request.Context(), domain.SessionID(id))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.Error(apperrors.NewNotFound("session"))
			return
		}
		c.Error(err)
		return
	}
	respondSuccess(c, http.StatusOK, "Session retrieved", gin.H{"session": session})
}

func (h *SessionHandler) End(c *gin.Context) {
	id := c.Param("id")
	if err := validation.ValidateSessionID(id); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}

	if err := h.sessions.End(c.Request.Context(), domain.SessionID(id)); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.Error(apperrors.NewNotFound("session"))
			return
		}
		c.Error(err)
		return
	}
	respondSuccess(c, http.StatusOK, "Session ended", gin.H{"session_id": id})
}

func (h *SessionHandler) Usage(c *gin.Context) {
	userID := c.Param("id")
	if err := validation.ValidateUserID(userID); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}

	usage, err := h.quota.Usage(c.Request.Context(), domain.UserID(userID))
	if err != nil {
		if errors.Is(err, domain.ErrSubscriptionNotFound) || errors.Is(err, domain.ErrPlanNotFound) {
			c.Error(apperrors.NewNotFound("subscription"))
			return
		}
		c.Error(err)
		return
	}
	respondSuccess(c, http.StatusOK, "Usage retrieved", gin.H{"usage": usage})
}
