package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/projecthub/submission-backend/config"
	"github.com/projecthub/submission-backend/internal/bootstrap"
	"github.com/projecthub/submission-backend/internal/logging"
	"github.com/projecthub/submission-backend/internal/storage/postgres"
)

const serviceName = "projecthub-api"

func main() {
	os.Exit(start())
}

// start owns every deferred cleanup so they run before the process exits.
func start() int {
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

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("api exited", zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      postgres.DSN(&cfg.Database),
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	sqlDB, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := postgres.Migrate(ctx, sqlDB); err != nil {
		return err
	}

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	} else {
		logger.Info("REDIS_ADDR not set, status cache disabled")
	}

	blobs, err := bootstrap.OpenBlobStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	verifier, err := bootstrap.NewVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:         serviceName,
		Version:             cfg.App.Version,
		AllowedOrigins:      cfg.Server.AllowedOrigins,
		DB:                  pool,
		SQL:                 sqlDB,
		Redis:               rdb,
		Blobs:               blobs,
		Verifier:            verifier,
		AdminEmails:         cfg.Auth.AdminEmails,
		StatusTTL:           cfg.Redis.StatusTTL,
		UploadMaxBytes:      cfg.Upload.MaxBytes,
		UploadRatePerMinute: cfg.Upload.RatePerMinute,
		UploadBurst:         cfg.Upload.Burst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("auth", cfg.Auth.Provider),
			zap.String("storage", cfg.Storage.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
