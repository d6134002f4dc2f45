// Package main runs the background enrichment worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cliplearn/backend/config"
	"github.com/cliplearn/backend/internal/ai"
	"github.com/cliplearn/backend/internal/enrichment"
	"github.com/cliplearn/backend/internal/transcribe"
	"github.com/cliplearn/backend/internal/videos"
	"github.com/cliplearn/backend/internal/worker"
	"github.com/cliplearn/backend/pkg/database"
	"github.com/cliplearn/backend/pkg/queue"
	"github.com/cliplearn/backend/pkg/redis"
	"github.com/cliplearn/backend/pkg/storage"
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

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		MediaBucket:     cfg.AWS.MediaBucket,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	videoRepo := videos.NewRepository(pool)
	transcriber := transcribe.NewWhisperRunner(transcribe.Config{
		Command:  cfg.Whisper.Command,
		Model:    cfg.Whisper.Model,
		Language: cfg.Whisper.Language,
		Timeout:  time.Duration(cfg.Whisper.TimeoutSec) * time.Second,
	}, logger)
	summarizer := ai.NewSummarizer(ai.SummarizerConfig{
		URL:     cfg.AI.SummarizerURL,
		Token:   cfg.AI.SummarizerToken,
		Timeout: time.Duration(cfg.AI.SummarizerTimeoutSec) * time.Second,
	}, logger)
	questionGen := ai.NewQuestionGenerator(ai.QuestionGenConfig{
		URL:     cfg.AI.QuestionGenURL,
		Timeout: time.Duration(cfg.AI.QuestionGenTimeoutSec) * time.Second,
	}, logger)
	enricher := enrichment.NewService(videoRepo, s3Client, transcriber, summarizer, questionGen, cfg.Upload.TempDir, logger)

	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewEnrichmentProcessor(enricher, jobQueue, logger)

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
