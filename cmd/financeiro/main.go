package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"financeiro/internal/amqp"
	"financeiro/internal/config"
	apphttp "financeiro/internal/http"
	applog "financeiro/internal/log"
	"financeiro/internal/services"
	"financeiro/internal/storage"
	"financeiro/internal/tasks"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Choose data backend (default: sqlite)
	var (
		stateStore storage.StateStore
		taskStore  tasks.Store
		closeRepo  func() error
	)
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		stateStore, taskStore, closeRepo = repo, repo.Tasks(), repo.Close
		logger.Info("Initialized SQLite backend", "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
	default:
		stateStore, taskStore, closeRepo = storage.NewMemoryStore(), tasks.NewMemoryStore(), func() error { return nil }
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	}
	defer closeRepo()

	// The backup pipeline is optional: without AMQP the service still
	// persists locally, it just never notifies the worker.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	finance := services.NewFinanceService(stateStore, publisher, cfg.SaveDebounce)
	if err := finance.Restore(context.Background()); err != nil {
		logger.Error("Failed to restore finance state", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, finance, taskStore)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		// Pending debounced writes must reach disk before exit.
		if err := finance.Flush(shutdownCtx); err != nil {
			logger.Error("Final state flush failed", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting financeiro server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
