package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "gymsched/docs"

	"gymsched/internal/config"
	"gymsched/internal/db"
	"gymsched/internal/logger"
	"gymsched/internal/server"
)

// @title GymSched API
// @version 1.0
// @description API for gym schedule and timeslot management.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	defer logger.Sync()
	logger.Info("Starting GymSched application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	srv := server.New(database, cfg, redisClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runWeeklyReset(ctx, srv)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

// runWeeklyReset fires the global schedule reset every Sunday at midnight UTC.
// The reset service takes a distributed lock, so multi-instance deployments
// still run it once.
func runWeeklyReset(ctx context.Context, srv *server.Server) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(untilNextSundayMidnight(time.Now().UTC())):
		}

		summary, err := srv.Reset.RunScheduled(ctx)
		if err != nil {
			logger.Errorf("Weekly reset failed: %v", err)
			continue
		}
		if summary != nil {
			logger.Info("Weekly reset completed",
				"reset_count", summary.ResetCount,
				"failed_count", summary.FailedCount,
			)
		}
	}
}

func untilNextSundayMidnight(now time.Time) time.Duration {
	daysAhead := (7 - int(now.Weekday())) % 7
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, daysAhead)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next.Sub(now)
}
