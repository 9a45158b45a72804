package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"live-session-backend/model"
)

// OpenQuestion 主持人发起新问题
// POST /api/sessions/:id/questions
func (h *Handler) OpenQuestion(c *gin.Context) {
	sessionID := c.Param("id")

	var req model.OpenQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deadline := time.Duration(req.DeadlineSeconds) * time.Second
	question, err := h.lifecycle.OpenQuestion(sessionID, req.Text, req.Options, deadline)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// EndQuestion 主持人提前结束当前问题
// POST /api/sessions/:id/questions/end
func (h *Handler) EndQuestion(c *gin.Context) {
	result, err := h.lifecycle.EndActiveQuestion(c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
