package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/serkansentuna34/serkan-ai-api/internal/clients"
	"github.com/serkansentuna34/serkan-ai-api/internal/config"
	"github.com/serkansentuna34/serkan-ai-api/internal/db"
	internalhttp "github.com/serkansentuna34/serkan-ai-api/internal/http"
	"github.com/serkansentuna34/serkan-ai-api/internal/jobs"
	"github.com/serkansentuna34/serkan-ai-api/internal/mail"
	"github.com/serkansentuna34/serkan-ai-api/internal/repository"
	"github.com/serkansentuna34/serkan-ai-api/internal/training"
)

func main() {
	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connection failed", zap.Error(err))
	}
	defer pool.Close()

	store := repository.NewStore(pool)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			logger.Fatal("redis ping failed", zap.Error(err))
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", zap.Error(err))
			}
		}()
	}

	aiClients := clients.New(cfg.ModelRunnerURL, cfg.WorkflowURL, cfg.WorkflowUser, cfg.WorkflowPassword, cfg.FlowBuilderURL, cfg.ClientTimeout)
	defer aiClients.Close()

	mailer := mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	engine := training.NewEngine(store, nil)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Fatal("upload dir init failed", zap.Error(err))
	}

	server := internalhttp.NewServer(cfg, store, engine, mailer, aiClients, redisClient, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	jobs.StartClassCloseJob(ctx, cfg, store, logger)

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}
