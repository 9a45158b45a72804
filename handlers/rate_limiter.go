package handlers

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"live-session-backend/limiter"
)

// RateLimitStats 限流统计信息
type RateLimitStats struct {
	TotalRequests    int64 `json:"totalRequests"`
	AllowedRequests  int64 `json:"allowedRequests"`
	RejectedRequests int64 `json:"rejectedRequests"`
}

// RateLimitMiddleware 基于令牌桶的API限流中间件。
// 调用方按客户端IP区分；限流后端不可用时放行（限流是保护手段，
// 不是正确性前提）。
type RateLimitMiddleware struct {
	limiter limiter.Limiter
	logger  *slog.Logger

	mu    sync.Mutex
	stats RateLimitStats
}

// NewRateLimitMiddleware 创建限流中间件
func NewRateLimitMiddleware(l limiter.Limiter, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: l, logger: logger}
}

// Handle 返回gin中间件函数
func (m *RateLimitMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := m.limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			m.logger.Warn("rate limiter unavailable, allowing request", "error", err)
			allowed = true
		}

		m.mu.Lock()
		m.stats.TotalRequests++
		if allowed {
			m.stats.AllowedRequests++
		} else {
			m.stats.RejectedRequests++
		}
		m.mu.Unlock()

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}
		c.Next()
	}
}

// Stats 返回限流统计处理器
// GET /api/ratelimit/stats
func (m *RateLimitMiddleware) Stats(c *gin.Context) {
	m.mu.Lock()
	stats := m.stats
	m.mu.Unlock()
	c.JSON(http.StatusOK, stats)
}
