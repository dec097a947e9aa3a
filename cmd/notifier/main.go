package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"key_expiry_notifier/internal/app"
	"key_expiry_notifier/internal/domain/telegram"
	"key_expiry_notifier/internal/infra/config"
	"key_expiry_notifier/internal/infra/logger"
	"key_expiry_notifier/internal/infra/scheduler"
	itg "key_expiry_notifier/internal/infra/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Log

	mainLogger.Infof("Key Expiry Notifier starting. Source: %s, Mode: %s, Policy: %s, Environment: %s",
		cfg.ManifestSource, cfg.NotificationMode, cfg.PolicySpec, cfg.Environment)

	ctx := context.Background()
	notifService, cleanup, err := app.BuildNotificationService(ctx, cfg, mainLogger)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not build notification service: %v", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			mainLogger.Errorf("Error releasing resources: %v", err)
		}
	}()
	mainLogger.Info("Notification service initialized.")

	// Optional run-summary reporting to an admin Telegram chat.
	var summaryClient *itg.TelebotAdapter
	if cfg.TelegramToken != "" {
		summaryClient, err = itg.NewTelebotAdapter(cfg.TelegramToken)
		if err != nil {
			mainLogger.Fatalf("FATAL: Could not create Telegram client: %v", err)
		}
		mainLogger.Info("Telegram run-summary client initialized.")
	}

	notifScheduler := scheduler.NewNotificationScheduler(notifService, clientOrNil(summaryClient), cfg.AdminTelegramID, mainLogger, cfg.CronSpec)
	if err := notifScheduler.Start(); err != nil {
		mainLogger.Fatalf("FATAL: Could not start scheduler with spec %q: %v", cfg.CronSpec, err)
	}

	mainLogger.Info("Application setup complete. Scheduler is running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	notifScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}

// clientOrNil keeps the scheduler's telegram.Client parameter a true nil
// when reporting is disabled, instead of a non-nil interface holding a nil
// adapter.
func clientOrNil(adapter *itg.TelebotAdapter) telegram.Client {
	if adapter == nil {
		return nil
	}
	return adapter
}
