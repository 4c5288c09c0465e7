package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"financeiro/internal/amqp"
	"financeiro/internal/backup"
	gsheet "financeiro/internal/backup/google"
	mem "financeiro/internal/backup/memory"
	"financeiro/internal/config"
	applog "financeiro/internal/log"
	"financeiro/internal/storage"
	"financeiro/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting financeiro-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker reads the same persisted document the server writes.
	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	var writer backup.SummaryWriter
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = sheetsClient
		logger.Info("Google Sheets writer initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		writer = mem.New()
		logger.Info("Google Sheets disabled - summaries stay in memory", "reason", "no GOOGLE_SPREADSHEET_ID provided")
	}

	backupWorker := worker.NewBackupWorker(sqliteRepo, writer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// On startup, push every known month so the sheet catches up on
	// anything written while the worker was down.
	if err := backupWorker.ResyncAll(ctx); err != nil {
		logger.Error("Startup resync failed", "error", err)
		// Don't exit - the periodic resync will retry
	}

	group, ctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		group.Go(func() error {
			return amqpClient.ConsumeMonthSync(ctx, func(msg *amqp.MonthSyncMessage) error {
				return backupWorker.HandleMonthSync(ctx, msg)
			})
		})
	} else {
		logger.Info("AMQP disabled - relying on periodic resync only")
	}

	group.Go(func() error {
		return backupWorker.RunPeriodicResync(ctx, cfg.ResyncInterval)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
