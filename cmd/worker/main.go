package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/projecthub/submission-backend/config"
	"github.com/projecthub/submission-backend/internal/logging"
	cronjob "github.com/projecthub/submission-backend/internal/notifications/cron"
	"github.com/projecthub/submission-backend/internal/notifications/repository"
	"github.com/projecthub/submission-backend/internal/notifications/service"
	"github.com/projecthub/submission-backend/internal/storage/postgres"
)

// jobRunner is the part of cronjob.Scheduler the worker drives.
type jobRunner interface {
	Start() error
	Stop(ctx context.Context)
	RunOnce(ctx context.Context) (int64, error)
}

func main() {
	os.Exit(start())
}

// start owns every deferred cleanup so they run before the process exits.
func start() int {
	command := "schedule"
	if len(os.Args) >= 2 {
		command = os.Args[1]
	}
	if command != "schedule" && command != "purge" {
		log.Printf("unknown command: %s (usage: worker [schedule|purge])", command)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Printf("logger: %v", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Error("database", zap.Error(err))
		return 1
	}
	defer db.Close()

	svc := service.NewNotificationService(repository.NewNotificationRepository(db))
	scheduler := cronjob.NewScheduler(svc, cfg.Notifications.PurgeSchedule, cfg.Notifications.RetentionWindow())

	if err := runWorker(ctx, command, scheduler, logger); err != nil {
		logger.Error("worker failed", zap.String("command", command), zap.Error(err))
		return 1
	}
	return 0
}

func runWorker(ctx context.Context, command string, jobs jobRunner, logger *zap.Logger) error {
	switch command {
	case "purge":
		if _, err := jobs.RunOnce(ctx); err != nil {
			return fmt.Errorf("purge: %w", err)
		}
		return nil
	case "schedule":
		if err := jobs.Start(); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		jobs.Stop(stopCtx)
		logger.Info("worker stopped")
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}
