package websocket

import (
	"log/slog"
	"sync"
	"time"

	"live-session-backend/model"
)

// Hub 维护按会话分组的客户端连接并负责房间内广播。
type Hub struct {
	// 已注册的客户端，按会话ID分组
	clients map[string]map[*Client]bool

	// 注册请求
	register chan *Client

	// 注销请求
	unregister chan *Client

	// 互斥锁保护clients map
	mu sync.RWMutex

	// 每个会话的连接数
	sessionConnections map[string]int

	// 当前连接总数
	totalConnections int

	// 最大连接数限制
	maxConnections int

	// 定期清理不活跃连接
	expireTicker *time.Ticker

	logger *slog.Logger
}

// NewHub 创建一个新的Hub
func NewHub(maxConnections int, logger *slog.Logger) *Hub {
	return &Hub{
		clients:            make(map[string]map[*Client]bool),
		register:           make(chan *Client),
		unregister:         make(chan *Client),
		sessionConnections: make(map[string]int),
		maxConnections:     maxConnections,
		expireTicker:       time.NewTicker(5 * time.Minute),
		logger:             logger,
	}
}

// Run 启动Hub消息处理循环
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[client.SessionID]; !ok {
				h.clients[client.SessionID] = make(map[*Client]bool)
			}
			h.clients[client.SessionID][client] = true
			h.sessionConnections[client.SessionID]++
			h.totalConnections++
			connCount := h.sessionConnections[client.SessionID]
			h.mu.Unlock()

			h.logger.Info("websocket client connected",
				"session_id", client.SessionID,
				"participant_id", client.ParticipantID,
				"session_connections", connCount)

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeClient(client)
			h.mu.Unlock()

		case <-h.expireTicker.C:
			h.reapIdleClients(30 * time.Minute)
		}
	}
}

// removeClient 删除客户端并关闭其发送通道。调用方持有写锁。
func (h *Hub) removeClient(client *Client) {
	sessionClients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	if _, ok := sessionClients[client]; !ok {
		return
	}
	delete(sessionClients, client)
	h.sessionConnections[client.SessionID]--
	h.totalConnections--
	close(client.send)

	if len(sessionClients) == 0 {
		delete(h.clients, client.SessionID)
		delete(h.sessionConnections, client.SessionID)
	}

	h.logger.Info("websocket client disconnected",
		"session_id", client.SessionID,
		"participant_id", client.ParticipantID)
}

// reapIdleClients 清理长时间不活跃的连接
func (h *Hub) reapIdleClients(timeout time.Duration) {
	cutoff := time.Now().Add(-timeout)

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sessionClients := range h.clients {
		for client := range sessionClients {
			if client.LastActivity().Before(cutoff) {
				h.logger.Info("closing idle websocket connection",
					"session_id", client.SessionID,
					"participant_id", client.ParticipantID)
				h.removeClient(client)
			}
		}
	}
}

// BroadcastToSession 向会话内所有连接客户端广播消息
func (h *Hub) BroadcastToSession(sessionID string, message *model.WebSocketMessage) {
	payload, err := message.ToJSON()
	if err != nil {
		h.logger.Error("failed to encode broadcast message",
			"session_id", sessionID, "type", message.Type, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[sessionID]))
	for client := range h.clients[sessionID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		h.deliver(client, payload)
	}
}

// SendToParticipant 向会话内某个参与者的连接单播消息
func (h *Hub) SendToParticipant(sessionID, participantID string, message *model.WebSocketMessage) {
	payload, err := message.ToJSON()
	if err != nil {
		h.logger.Error("failed to encode unicast message",
			"session_id", sessionID, "type", message.Type, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, 1)
	for client := range h.clients[sessionID] {
		if client.ParticipantID == participantID {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		h.deliver(client, payload)
	}
}

// deliver 投递消息；客户端发送缓冲已满时断开该连接
func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.mu.Lock()
		h.removeClient(client)
		h.mu.Unlock()
	}
}

// RegisterClient 注册客户端到Hub
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient 从Hub中注销客户端
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// CanAccept 是否还能接受新连接
func (h *Hub) CanAccept() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConnections < h.maxConnections
}

// TotalConnections 当前连接总数
func (h *Hub) TotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConnections
}
