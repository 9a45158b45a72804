package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"live-session-backend/model"
	"live-session-backend/service"
)

// HandleSSE 通过Server-Sent Events推送会话的实时统计。
// WebSocket之外的备用只读通道，按固定间隔推送当前聚合结果。
// GET /api/sessions/:id/live
func (h *Handler) HandleSSE(c *gin.Context) {
	sessionID := c.Param("id")

	if _, err := h.registry.GetSession(sessionID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	// 设置SSE所需的HTTP头
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // 禁用Nginx缓冲

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return

		case <-ticker.C:
			session, err := h.registry.GetSession(sessionID)
			if err != nil {
				// 会话已删除，结束推送
				fmt.Fprintf(c.Writer, "event: session_closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}

			session.Lock()
			var result *model.QuestionResult
			if session.ActiveQuestion != nil {
				result = service.Aggregate(session.ActiveQuestion, session.Participants)
			} else if len(session.History) > 0 {
				last := session.History[len(session.History)-1]
				result = &last
			}
			session.Unlock()

			if result == nil {
				continue
			}
			data, err := json.Marshal(result)
			if err != nil {
				h.logger.Error("failed to encode sse payload", "error", err)
				continue
			}
			fmt.Fprintf(c.Writer, "event: results\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
