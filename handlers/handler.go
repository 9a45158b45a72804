package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"live-session-backend/registry"
	"live-session-backend/service"
	"live-session-backend/websocket"
)

// Handler 持有HTTP层依赖的处理器集合
type Handler struct {
	registry   *registry.Registry
	lifecycle  *service.Lifecycle
	submission *service.Submission
	hub        *websocket.Hub
	logger     *slog.Logger
	startedAt  time.Time
}

// New 创建处理器
func New(reg *registry.Registry, lifecycle *service.Lifecycle, submission *service.Submission, hub *websocket.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		registry:   reg,
		lifecycle:  lifecycle,
		submission: submission,
		hub:        hub,
		logger:     logger,
		startedAt:  time.Now(),
	}
}

// writeServiceError 将业务错误映射为HTTP状态码
func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, registry.ErrSessionNotFound),
		errors.Is(err, registry.ErrParticipantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, registry.ErrAlreadyModerating),
		errors.Is(err, registry.ErrAlreadyJoined),
		errors.Is(err, registry.ErrDuplicateName),
		errors.Is(err, registry.ErrSessionFull),
		errors.Is(err, service.ErrQuestionAlreadyActive),
		errors.Is(err, service.ErrNoActiveQuestion),
		errors.Is(err, service.ErrQuestionMismatch),
		errors.Is(err, service.ErrAlreadyAnswered):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrInvalidOption):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		h.logger.Error("unexpected handler error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
