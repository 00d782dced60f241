// cmd/jobs-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"yaya-jobs/internal/common/aws"
	"yaya-jobs/internal/common/config"
	"yaya-jobs/internal/common/database"
	"yaya-jobs/internal/common/logger"
	"yaya-jobs/internal/matching"
	"yaya-jobs/internal/notify"
	"yaya-jobs/internal/server"
	"yaya-jobs/internal/store"
	"yaya-jobs/internal/ussd"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting jobs server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init SNS client ---
	snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("sns client failed", zap.Error(err))
	}
	zapLog.Info("SNS client initialized")

	// --- Schema & seed ---
	directory := store.NewPostgresStore(pg.GetDB())

	if err := store.EnsureSchema(ctx, pg.GetDB()); err != nil {
		zapLog.Fatal("schema setup failed", zap.Error(err))
	}
	if cfg.Server.SeedData {
		if err := store.Seed(ctx, directory); err != nil {
			zapLog.Fatal("seed data failed", zap.Error(err))
		}
		zapLog.Info("Seed data loaded")
	}

	sessions := store.NewRedisSessionStore(
		redis.GetClient(),
		time.Duration(cfg.Ussd.SessionTTL)*time.Second,
	)

	// --- Wire components ---
	dialog := ussd.NewEngine(
		&ussd.Config{ServiceCode: cfg.Ussd.ServiceCode},
		directory, sessions, log,
	)
	matcher := matching.NewEngine(
		&matching.Config{MaxWorkersPerJob: cfg.Matching.MaxWorkersPerJob},
		directory, log,
	)
	dispatcher := notify.NewDispatcher(
		&notify.Config{
			Enabled:  cfg.Notifications.SMS.Enabled,
			SenderID: cfg.Notifications.SMS.SenderID,
		},
		directory, snsClient, log,
	)

	srv := server.New(cfg, server.Dependencies{
		Dialog:     dialog,
		Matcher:    matcher,
		Dispatcher: dispatcher,
		Directory:  directory,
	}, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received, stopping server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error during server shutdown", zap.Error(err))
	}

	zapLog.Info("Jobs server stopped gracefully")
}
