package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/user/profile-collector/internal/adapter/postgres"
	redis_adapter "github.com/user/profile-collector/internal/adapter/redis"
	"github.com/user/profile-collector/internal/collector"
	"github.com/user/profile-collector/internal/delivery/http/handler"
	"github.com/user/profile-collector/internal/delivery/http/router"
	"github.com/user/profile-collector/internal/usecase"
	"github.com/user/profile-collector/pkg/config"
	"github.com/user/profile-collector/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	// --- Database Connections ---
	ctx := context.Background()

	dbpool, err := postgres.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal("Unable to connect to database", zap.Error(err))
	}
	defer dbpool.Close()
	log.Info("PostgreSQL connection pool established")

	rdb, err := redis_adapter.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("Unable to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("Redis connection established")

	// --- Repositories ---
	visitedRepo := redis_adapter.NewVisitedRepo(rdb)
	queueRepo := redis_adapter.NewQueueRepo(rdb)
	runRepo := postgres.NewRunRepo(dbpool)
	profileRepo := postgres.NewProfileRepo(dbpool)

	// --- Use Cases ---
	defaults := collector.Config{
		StagnationLimit: cfg.StagnationLimit,
		MaxRecords:      cfg.MaxRecords,
		MaxPasses:       cfg.MaxPasses,
		SettleDelay:     cfg.SettleDelay,
		MaxDuration:     cfg.RunTimeout,
	}
	runManager := usecase.NewRunManager(visitedRepo, queueRepo, runRepo, profileRepo, defaults, cfg.DedupWindow, log)

	// --- HTTP Server ---
	checks := map[string]handler.HealthCheck{
		"postgres": dbpool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}
	apiHandler := handler.NewHandler(runManager, checks, log)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(apiHandler, log),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exiting")
}
