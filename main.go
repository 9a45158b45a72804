package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"live-session-backend/config"
	"live-session-backend/handlers"
	"live-session-backend/limiter"
	"live-session-backend/registry"
	"live-session-backend/routes"
	"live-session-backend/service"
	"live-session-backend/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	// 组装核心组件：注册表 -> hub -> 生命周期控制器 -> 提交处理器
	reg := registry.New(cfg.MaxParticipants)

	hub := websocket.NewHub(cfg.MaxWSConnections, logger)
	go hub.Run()

	lifecycle := service.NewLifecycle(reg, hub, logger)
	submission := service.NewSubmission(reg, lifecycle, hub, logger)

	handler := handlers.New(reg, lifecycle, submission, hub, logger)

	// 限流器：配置了Redis时使用Redis令牌桶，否则使用本地令牌桶
	rateLimit := handlers.NewRateLimitMiddleware(newLimiter(cfg, logger), logger)

	router := routes.SetupRouter(cfg, handler, rateLimit)
	srv := routes.StartServer(cfg, router, logger)
	logger.Info("server started",
		"port", cfg.Port,
		"max_participants", cfg.MaxParticipants,
		"rate_limit", cfg.RateLimitEnabled)

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// 不接受新请求并等待现有请求完成
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newLogger 创建结构化日志器
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// newLimiter 根据配置选择限流后端
func newLimiter(cfg *config.Config, logger *slog.Logger) limiter.Limiter {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, falling back to local rate limiter",
				"addr", cfg.RedisAddr, "error", err)
		} else {
			logger.Info("using redis rate limiter", "addr", cfg.RedisAddr)
			return limiter.NewRedisLimiter(client, "api",
				cfg.GlobalRateLimit, cfg.GlobalRateLimit*2,
				cfg.UserRateLimit, cfg.UserRateLimit*2)
		}
	}
	return limiter.NewLocalLimiter(
		cfg.GlobalRateLimit, cfg.GlobalRateLimit*2,
		cfg.UserRateLimit, cfg.UserRateLimit*2)
}
