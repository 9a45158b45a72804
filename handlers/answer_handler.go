package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"live-session-backend/model"
)

// SubmitAnswer 参与者提交答案
// POST /api/sessions/:id/answers
func (h *Handler) SubmitAnswer(c *gin.Context) {
	sessionID := c.Param("id")

	var req model.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.submission.Submit(sessionID, req.ParticipantID, req.QuestionID, req.OptionID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response := gin.H{"message": "answer submitted"}
	if result != nil {
		// This submission was the last outstanding one and closed the
		// question; hand the snapshot back alongside the ack.
		response["closed"] = true
		response["result"] = result
	}
	c.JSON(http.StatusOK, response)
}
