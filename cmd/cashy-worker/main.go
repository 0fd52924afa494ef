package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cashy/internal/amqp"
	"cashy/internal/config"
	"cashy/internal/log"
	"cashy/internal/storage"
	"cashy/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	appLogger := logger.WithComponent(log.ComponentWorker)

	appLogger.Info("Starting cashy-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		appLogger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		appLogger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		appLogger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alerts := worker.NewAlertWorker(repo, logger)

	go func() {
		if err := amqpClient.ConsumeBudgetChecks(ctx, func(msg *amqp.BudgetCheckMessage) error {
			return alerts.HandleBudgetCheck(ctx, msg)
		}); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error("Message consumption failed", log.FieldError, err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		appLogger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		appLogger.Info("Context cancelled")
	}

	appLogger.Info("Shutting down worker...")
	cancel()

	// Give in-flight handlers a moment to finish
	time.Sleep(2 * time.Second)
	appLogger.Info("Worker shutdown complete")
}
