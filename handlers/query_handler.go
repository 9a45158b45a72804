package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"live-session-backend/model"
	"live-session-backend/service"
)

// GetResults 当前问题的实时统计；没有进行中的问题时返回最近一次
// 的关闭快照。两种情况返回完全相同的结构。
// GET /api/sessions/:id/results
func (h *Handler) GetResults(c *gin.Context) {
	session, err := h.registry.GetSession(c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	session.Lock()
	var result *model.QuestionResult
	switch {
	case session.ActiveQuestion != nil:
		result = service.Aggregate(session.ActiveQuestion, session.Participants)
	case len(session.History) > 0:
		last := session.History[len(session.History)-1]
		result = &last
	}
	session.Unlock()

	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no question asked yet"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetHistory 已关闭问题的快照列表，按关闭顺序排列
// GET /api/sessions/:id/history
func (h *Handler) GetHistory(c *gin.Context) {
	session, err := h.registry.GetSession(c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	session.Lock()
	history := append([]model.QuestionResult(nil), session.History...)
	session.Unlock()

	c.JSON(http.StatusOK, history)
}

// GetSessionStats 会话级汇总统计
// GET /api/sessions/:id/stats
func (h *Handler) GetSessionStats(c *gin.Context) {
	session, err := h.registry.GetSession(c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	session.Lock()
	totalResponses := 0
	for _, r := range session.History {
		totalResponses += r.TotalResponses
	}
	stats := gin.H{
		"session_id":        session.ID,
		"status":            session.Status,
		"participant_count": len(session.Participants),
		"questions_closed":  len(session.History),
		"total_responses":   totalResponses,
		"question_active":   session.ActiveQuestion != nil,
	}
	session.Unlock()

	c.JSON(http.StatusOK, stats)
}
