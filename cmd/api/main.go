// Package main UI Forge API 服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ui-forge-api/internal/application/generation"
	"ui-forge-api/internal/config"
	"ui-forge-api/internal/infrastructure/llm"
	"ui-forge-api/internal/infrastructure/persistence/postgres"
	"ui-forge-api/internal/infrastructure/persistence/redis"
	"ui-forge-api/internal/interfaces/http/handler"
	"ui-forge-api/internal/interfaces/http/router"
	"ui-forge-api/internal/preview"
	"ui-forge-api/pkg/logger"
	"ui-forge-api/pkg/tracer"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting ui-forge-api",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	// 初始化追踪
	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// 数据层
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to connect postgres", err)
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to connect redis", err)
	}
	defer redisClient.Close()

	userRepo := postgres.NewUserRepository(pgClient)
	sessionRepo := postgres.NewSessionRepository(pgClient)
	turnRepo := postgres.NewTurnRepository(pgClient)
	txMgr := postgres.NewTxManager(pgClient)

	cache := redis.NewCache(redisClient)
	limiter := redis.NewRateLimiter(redisClient)
	sessionLock := redis.NewSessionLock(redisClient, cfg.Generation.SessionLockTTL)

	// 生成流水线
	llmClient := llm.NewClient(&cfg.LLM)
	hub := preview.NewHub(cfg.Preview.Debounce)
	contextBuilder := generation.NewContextBuilder(sessionRepo, turnRepo, cache, cfg.Generation.ContextDepth)
	composer := generation.NewPromptComposer()
	genService := generation.NewService(contextBuilder, composer, llmClient, turnRepo, txMgr, sessionLock, cache, hub)

	// HTTP 层
	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(cfg.Security.JWT, userRepo),
		Session:    handler.NewSessionHandler(sessionRepo, turnRepo, txMgr, cache, hub),
		Generation: handler.NewGenerationHandler(genService),
		Preview:    handler.NewPreviewHandler(sessionRepo, turnRepo, hub, cfg.Preview.Heartbeat),
		Health:     handler.NewHealthHandler(pgClient, redisClient),
	}
	r := router.New(cfg, handlers, limiter)

	// 创建 HTTP 服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	// 启动服务器
	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
