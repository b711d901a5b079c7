// Package main runs the background job worker (calendar cleanup retries).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tegarerputra/Scheduling-System-JFU/config"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/ads"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/auth"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/calendar"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/realtime"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/worker"
	"github.com/tegarerputra/Scheduling-System-JFU/pkg/database"
	"github.com/tegarerputra/Scheduling-System-JFU/pkg/queue"
	"github.com/tegarerputra/Scheduling-System-JFU/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	calClient := calendar.NewClient(calendar.Config{
		BaseURL:        cfg.Calendar.BaseURL,
		CalendarID:     cfg.Calendar.CalendarID,
		Timezone:       cfg.Calendar.Timezone,
		RequestTimeout: cfg.Calendar.RequestTimeout,
	}, logger)

	policy := ads.SlotPolicy{
		MaxNewPerDay:      cfg.Slots.MaxNewPerDay,
		MaxExtendedPerDay: cfg.Slots.MaxExtendedPerDay,
	}
	adRepo := ads.NewRepository(pool, policy, calClient.Location())
	authRepo := auth.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Publish-only hub: cleanup updates reach API replica caches via Redis.
	hub := realtime.NewHub(logger, realtime.NewRedisPubSub(rdb.Client, logger), nil)
	feed := ads.NewFeed(hub, logger)

	processor := worker.NewCleanupProcessor(adRepo, authRepo, calClient, jobQueue, feed, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
