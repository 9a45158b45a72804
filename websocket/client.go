package websocket

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取pong的最长等待时间
	pongWait = 60 * time.Second

	// ping发送间隔，必须小于pongWait
	pingPeriod = (pongWait * 9) / 10

	// 客户端消息大小上限
	maxMessageSize = 512
)

// Client 表示一个WebSocket客户端连接
type Client struct {
	// 所属会话ID
	SessionID string

	// 连接对应的参与者ID（主持人或旁观连接可为空）
	ParticipantID string

	hub  *Hub
	conn *websocket.Conn

	// 发送消息的缓冲通道
	send chan []byte

	// 上次活动时间（unix纳秒）
	lastActivity atomic.Int64

	logger *slog.Logger
}

// NewClient 创建客户端连接
func NewClient(hub *Hub, conn *websocket.Conn, sessionID, participantID string, logger *slog.Logger) *Client {
	c := &Client{
		SessionID:     sessionID,
		ParticipantID: participantID,
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, 256),
		logger:        logger,
	}
	c.touch()
	return c
}

// LastActivity 返回客户端最后活动时间
func (c *Client) LastActivity() time.Time {
	return time.Unix(0, c.lastActivity.Load())
}

func (c *Client) touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}

// ReadPump 持续读取客户端消息。
// 服务器到客户端是主要方向；入站只处理应用层PING。
func (c *Client) ReadPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.touch()
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error",
					"session_id", c.SessionID, "error", err)
			}
			break
		}
		c.touch()

		if messageType == websocket.TextMessage {
			var msg map[string]interface{}
			if err := json.Unmarshal(message, &msg); err == nil {
				if msgType, ok := msg["type"].(string); ok && msgType == "PING" {
					pong := map[string]string{
						"type": "PONG",
						"time": time.Now().Format(time.RFC3339),
					}
					if data, err := json.Marshal(pong); err == nil {
						c.conn.SetWriteDeadline(time.Now().Add(writeWait))
						c.conn.WriteMessage(websocket.TextMessage, data)
					}
				}
			}
		}
	}
}

// WritePump 将hub投递的消息写入连接并定期发送ping。
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub关闭了channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.touch()

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// 顺带写出已排队的消息
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
