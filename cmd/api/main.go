package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "github.com/akashwav/ConnectGo/cmd/api/router/v1"
	"github.com/akashwav/ConnectGo/internal/config"
	cacheadapter "github.com/akashwav/ConnectGo/internal/infrastructure/cache/adapter"
	cacheport "github.com/akashwav/ConnectGo/internal/infrastructure/cache/port"
	"github.com/akashwav/ConnectGo/internal/infrastructure/database"
	"github.com/akashwav/ConnectGo/internal/infrastructure/logger"
	queueadapter "github.com/akashwav/ConnectGo/internal/infrastructure/queue/adapter"
	qport "github.com/akashwav/ConnectGo/internal/infrastructure/queue/port"
	"github.com/akashwav/ConnectGo/internal/infrastructure/realtime"
	"github.com/akashwav/ConnectGo/internal/pkg/chat/application/task"
	"github.com/akashwav/ConnectGo/internal/pkg/chat/persistence/repository/adapter"
	"github.com/akashwav/ConnectGo/internal/pkg/chat/presentation/controller"
	httpHandler "github.com/akashwav/ConnectGo/internal/pkg/chat/presentation/http"
)

func main() {
	// Load .env file; absence is fine in containerized deployments.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Setup("info", false)
		logger.L().Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the database on startup
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	// Redis-backed collaborators are optional: without REDIS_URL the API runs
	// with membership lookups hitting Postgres and no write-behind state task.
	var cache cacheport.Cache
	var queueClient qport.Client
	if cfg.RedisURL != "" {
		redisCache, err := cacheadapter.NewRedisAdapter()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisCache.Close()
		cache = redisCache

		asynqClient, err := queueadapter.NewAsynqClientFromEnv()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("failed to create queue client")
		}
		defer asynqClient.Close()
		queueClient = asynqClient

		asynqServer, err := queueadapter.NewAsynqServer()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("failed to create queue server")
		}
		task.RegisterUpdateChatStateTask(asynqServer, adapter.NewPgChatRepository(pool))
		go func() {
			if err := asynqServer.Run(ctx); err != nil {
				logger.L().Error().Err(err).Msg("queue server stopped")
			}
		}()
	} else {
		logger.L().Warn().Msg("REDIS_URL not set; membership cache and state updates disabled")
	}

	rooms := realtime.NewRouter()
	registry := realtime.NewRegistry(rooms)
	dispatcher := realtime.NewDispatcher(rooms)

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	v1.RegisterRoutes(r, httpHandler.Deps{
		Pool:          pool,
		Cache:         cache,
		Queue:         queueClient,
		Registry:      registry,
		Dispatcher:    dispatcher,
		MembershipTTL: cfg.MembershipCacheTTL,
		Socket: controller.SocketOptions{
			ReadLimit:   cfg.WSReadLimit,
			ReadTimeout: cfg.WSReadTimeout,
			SendBuffer:  cfg.WSSendBuffer,
		},
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.L().Info().Str("port", cfg.Port).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.L().Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Error().Err(err).Msg("http shutdown failed")
	}
}
