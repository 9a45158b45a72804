package routes

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"live-session-backend/config"
	"live-session-backend/handlers"
)

// Server 是HTTP服务器的封装
type Server struct {
	*http.Server
}

// SetupRouter 设置和配置Gin路由
func SetupRouter(cfg *config.Config, handler *handlers.Handler, rateLimit *handlers.RateLimitMiddleware) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// 配置CORS中间件
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 定义API路由
	api := router.Group("/api")
	{
		if cfg.RateLimitEnabled {
			api.Use(rateLimit.Handle())
			api.GET("/ratelimit/stats", rateLimit.Stats)
		}

		// 健康检查和状态端点
		api.GET("/health", handler.HealthCheck)
		api.GET("/status", handler.SystemStatus)

		// 会话管理端点
		sessions := api.Group("/sessions")
		{
			sessions.POST("", handler.CreateSession)
			sessions.GET("/:id", handler.GetSession)
			sessions.DELETE("/:id", handler.DeleteSession)

			// 参与者进出
			sessions.POST("/:id/join", handler.JoinSession)
			sessions.POST("/:id/leave", handler.LeaveSession)

			// 问题生命周期
			sessions.POST("/:id/questions", handler.OpenQuestion)
			sessions.POST("/:id/questions/end", handler.EndQuestion)

			// 答案提交
			sessions.POST("/:id/answers", handler.SubmitAnswer)

			// 只读查询
			sessions.GET("/:id/results", handler.GetResults)
			sessions.GET("/:id/history", handler.GetHistory)
			sessions.GET("/:id/stats", handler.GetSessionStats)

			// 实时更新端点（WebSocket和SSE）
			sessions.GET("/:id/ws", handler.HandleWebSocket) // WebSocket方式
			sessions.GET("/:id/live", handler.HandleSSE)     // SSE方式
		}
	}

	return router
}

// StartServer 启动HTTP服务器
func StartServer(cfg *config.Config, router *gin.Engine, logger *slog.Logger) *Server {
	addr := ":" + cfg.Port

	srv := &Server{
		&http.Server{
			Addr:    addr,
			Handler: router,
		},
	}

	// 在单独的goroutine中启动服务器
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	return srv
}
