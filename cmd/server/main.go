// Package main runs the video platform HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cliplearn/backend/config"
	"github.com/cliplearn/backend/internal/ai"
	"github.com/cliplearn/backend/internal/auth"
	"github.com/cliplearn/backend/internal/credits"
	"github.com/cliplearn/backend/internal/enrichment"
	"github.com/cliplearn/backend/internal/media"
	"github.com/cliplearn/backend/internal/middleware"
	"github.com/cliplearn/backend/internal/sweeper"
	"github.com/cliplearn/backend/internal/transcribe"
	"github.com/cliplearn/backend/internal/videos"
	"github.com/cliplearn/backend/pkg/database"
	"github.com/cliplearn/backend/pkg/queue"
	"github.com/cliplearn/backend/pkg/redis"
	"github.com/cliplearn/backend/pkg/response"
	"github.com/cliplearn/backend/pkg/storage"
)

// accountStore joins user lookup with the atomic credit debit for the
// watch-authorization ledger.
type accountStore struct {
	*auth.Repository
	credits *credits.Repository
}

func (s accountStore) DebitCreditForWatch(ctx context.Context, viewerID, videoID uuid.UUID) (int, error) {
	return s.credits.DebitCreditForWatch(ctx, viewerID, videoID)
}

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

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		MediaBucket:     cfg.AWS.MediaBucket,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Videos: publish flow
	videoRepo := videos.NewRepository(pool)
	prober := media.NewProber()
	publisher := videos.NewPublisher(prober, s3Client, videoRepo, videos.Limits{
		FreeMaxSeconds:    cfg.Limits.FreeMaxSeconds,
		PremiumMaxSeconds: cfg.Limits.PremiumMaxSeconds,
	}, logger)

	// Credits: watch authorization
	creditsRepo := credits.NewRepository(pool)
	ledger := credits.NewLedger(videoRepo, accountStore{authRepo, creditsRepo}, logger)

	// Enrichment pipeline
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
	videoHandler := videos.NewHandler(videoRepo, authRepo, publisher, ledger, enricher, jobQueue, s3Client, cfg.Upload.TempDir, logger)

	// Premium-expiry sweeper
	premiumSweeper := sweeper.New(authRepo, time.Duration(cfg.Sweep.IntervalHours)*time.Hour, logger)
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go premiumSweeper.Run(sweepCtx)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.POST("/videos", videoHandler.Publish)
		api.GET("/videos", videoHandler.List)
		api.GET("/videos/:id", videoHandler.GetByID)
		api.PATCH("/videos/:id", videoHandler.Update)
		api.PATCH("/videos/:id/toggle-publish", videoHandler.TogglePublish)
		api.DELETE("/videos/:id", videoHandler.Delete)

		api.POST("/videos/:id/watch", videoHandler.Watch)

		api.POST("/videos/:id/enrich", videoHandler.Enrich)
		api.GET("/videos/:id/ai", videoHandler.GetAI)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sweepCancel()
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
