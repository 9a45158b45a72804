package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"

	"live-session-backend/websocket"
)

// 定义WebSocket升级器
var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 允许所有CORS请求，生产环境应限制
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket 将连接加入会话房间，之后只接收服务端推送。
// GET /api/sessions/:id/ws?participant_id=...
func (h *Handler) HandleWebSocket(c *gin.Context) {
	sessionID := c.Param("id")

	if _, err := h.registry.GetSession(sessionID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	if !h.hub.CanAccept() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "connection limit reached"})
		return
	}

	// 参与者ID可选：主持人侧或大屏展示可以匿名旁观
	participantID := c.Query("participant_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			"session_id", sessionID, "error", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, sessionID, participantID, h.logger)
	h.hub.RegisterClient(client)

	go client.WritePump()
	go client.ReadPump()
}
