package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"live-session-backend/model"
)

// CreateSession 创建会话
// POST /api/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.registry.CreateSession(uuid.NewString(), req.ModeratorID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.logger.Info("session created",
		"session_id", session.ID, "moderator_id", req.ModeratorID)

	c.JSON(http.StatusCreated, gin.H{
		"session_id":   session.ID,
		"moderator_id": session.ModeratorID,
		"status":       session.Status,
		"created_at":   session.CreatedAt,
	})
}

// JoinSession 参与者加入会话
// POST /api/sessions/:id/join
func (h *Handler) JoinSession(c *gin.Context) {
	sessionID := c.Param("id")

	var req model.JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.registry.AddParticipant(sessionID, req.ParticipantID, req.Name)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	session, err := h.registry.GetSession(sessionID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	session.Lock()
	count := len(session.Participants)
	session.Unlock()

	h.hub.BroadcastToSession(sessionID, &model.WebSocketMessage{
		Type:      model.MsgParticipantJoined,
		SessionID: sessionID,
		Payload: model.ParticipantEvent{
			ParticipantID:    participant.ID,
			Name:             participant.Name,
			ParticipantCount: count,
		},
	})

	c.JSON(http.StatusCreated, participant)
}

// LeaveSession 参与者离开会话（主动离开或断线清理共用）
// POST /api/sessions/:id/leave
func (h *Handler) LeaveSession(c *gin.Context) {
	sessionID := c.Param("id")

	var req model.LeaveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.registry.RemoveParticipant(sessionID, req.ParticipantID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	session, err := h.registry.GetSession(sessionID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	session.Lock()
	count := len(session.Participants)
	session.Unlock()

	h.hub.BroadcastToSession(sessionID, &model.WebSocketMessage{
		Type:      model.MsgParticipantLeft,
		SessionID: sessionID,
		Payload: model.ParticipantEvent{
			ParticipantID:    participant.ID,
			Name:             participant.Name,
			ParticipantCount: count,
		},
	})

	c.JSON(http.StatusOK, gin.H{"message": "participant removed"})
}

// GetSession 会话详情（只读投影）
// GET /api/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.registry.GetSession(c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	// Copy everything out under the lock; the response is serialized
	// after the lock is released.
	session.Lock()
	participants := make([]model.Participant, 0, len(session.Participants))
	for _, p := range session.Participants {
		participants = append(participants, *p)
	}
	var question *model.Question
	if session.ActiveQuestion != nil {
		q := *session.ActiveQuestion
		q.Options = append([]model.Option(nil), session.ActiveQuestion.Options...)
		question = &q
	}
	detail := gin.H{
		"session_id":      session.ID,
		"moderator_id":    session.ModeratorID,
		"status":          session.Status,
		"created_at":      session.CreatedAt,
		"participants":    participants,
		"active_question": question,
		"history_length":  len(session.History),
	}
	session.Unlock()

	c.JSON(http.StatusOK, detail)
}

// DeleteSession 删除会话，先取消未触发的截止计时器
// DELETE /api/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.lifecycle.DeleteSession(c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session deleted"})
}
