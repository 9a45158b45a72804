package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemInfo contains basic system metrics and information
type SystemInfo struct {
	Status           string    `json:"status"`
	Version          string    `json:"version"`
	Uptime           string    `json:"uptime"`
	StartTime        time.Time `json:"start_time"`
	CurrentTime      time.Time `json:"current_time"`
	GoVersion        string    `json:"go_version"`
	NumGoroutine     int       `json:"num_goroutine"`
	NumCPU           int       `json:"num_cpu"`
	SessionCount     int       `json:"session_count"`
	ParticipantCount int       `json:"participant_count"`
	WSConnections    int       `json:"ws_connections"`
}

// 应用版本，可通过构建参数注入
var version = "0.1.0"

// HealthCheck 提供基本健康检查端点
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// SystemStatus 提供详细的系统状态信息
func (h *Handler) SystemStatus(c *gin.Context) {
	info := SystemInfo{
		Status:           "ok",
		Version:          version,
		Uptime:           time.Since(h.startedAt).String(),
		StartTime:        h.startedAt,
		CurrentTime:      time.Now(),
		GoVersion:        runtime.Version(),
		NumGoroutine:     runtime.NumGoroutine(),
		NumCPU:           runtime.NumCPU(),
		SessionCount:     h.registry.SessionCount(),
		ParticipantCount: h.registry.ParticipantCount(),
		WSConnections:    h.hub.TotalConnections(),
	}

	c.JSON(http.StatusOK, info)
}
