// Package main runs the ad slot scheduling HTTP server with the websocket
// change feed and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tegarerputra/Scheduling-System-JFU/config"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/ads"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/auth"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/calendar"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/middleware"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/realtime"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/worker"
	"github.com/tegarerputra/Scheduling-System-JFU/pkg/database"
	"github.com/tegarerputra/Scheduling-System-JFU/pkg/queue"
	"github.com/tegarerputra/Scheduling-System-JFU/pkg/redis"
	"github.com/tegarerputra/Scheduling-System-JFU/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	calClient := calendar.NewClient(calendar.Config{
		BaseURL:        cfg.Calendar.BaseURL,
		CalendarID:     cfg.Calendar.CalendarID,
		Timezone:       cfg.Calendar.Timezone,
		RequestTimeout: cfg.Calendar.RequestTimeout,
	}, logger)
	loc := calClient.Location()

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Ads
	policy := ads.SlotPolicy{
		MaxNewPerDay:      cfg.Slots.MaxNewPerDay,
		MaxExtendedPerDay: cfg.Slots.MaxExtendedPerDay,
	}
	adRepo := ads.NewRepository(pool, policy, loc)
	feed := ads.NewFeed(hub, logger)
	cache := ads.NewCache()
	cache.AttachTo(feed)

	// Events from other replicas re-enter the local feed so the cache stays
	// coherent across instances.
	if err := hub.Start(func(_ string, payload []byte) { feed.DispatchRemote(payload) }); err != nil {
		logger.Fatal("ads channel subscribe", zap.Error(err))
	}
	defer hub.Stop()

	jobQueue := queue.NewQueue(rdb.Client, logger)
	adService := ads.NewService(adRepo, calClient, authRepo, feed, cache, jobQueue, policy, loc, logger)
	adHandler := ads.NewHandler(adService)

	// In-process cleanup worker retries failed calendar deletions.
	cleanupProcessor := worker.NewCleanupProcessor(adRepo, authRepo, calClient, jobQueue, feed, logger)

	jwtValidate := func(token string) (string, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", err
		}
		return claims.UserID.String(), nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/auth/me", authHandler.Me)
		api.PUT("/auth/google-token", authHandler.SetGoogleToken)
		api.GET("/users", middleware.RequireRole("admin"), authHandler.List)

		api.POST("/ads", adHandler.Create)
		api.GET("/ads", adHandler.List)
		api.GET("/ads/:id", adHandler.GetByID)
		api.PATCH("/ads/:id", adHandler.Update)
		api.POST("/ads/:id/extend", adHandler.Extend)
		api.POST("/ads/:id/schedule", adHandler.Schedule)
		api.POST("/ads/:id/cancel", adHandler.Cancel)

		api.GET("/slots/availability", adHandler.Availability)
	}

	// WebSocket change feed (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go cleanupProcessor.Run(workerCtx)
	logger.Info("calendar cleanup worker started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
