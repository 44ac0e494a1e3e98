package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/user/profile-collector/internal/adapter/chromedp_browser"
	"github.com/user/profile-collector/internal/adapter/postgres"
	redis_adapter "github.com/user/profile-collector/internal/adapter/redis"
	"github.com/user/profile-collector/internal/collector"
	"github.com/user/profile-collector/internal/extractor"
	"github.com/user/profile-collector/internal/usecase"
	"github.com/user/profile-collector/internal/worker"
	"github.com/user/profile-collector/pkg/config"
	"github.com/user/profile-collector/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := postgres.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal("Unable to connect to database", zap.Error(err))
	}
	defer dbpool.Close()

	rdb, err := redis_adapter.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("Unable to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	browser, err := chromedp_browser.NewBrowser(chromedp_browser.Options{
		Headless:        cfg.BrowserHeadless,
		ExecPath:        cfg.BrowserExecPath,
		UserAgents:      cfg.UserAgents(),
		PageLoadTimeout: cfg.PageLoadTimeout,
		Mode:            chromedp_browser.TriggerMode(cfg.TriggerMode),
	}, log.Named("browser"))
	if err != nil {
		log.Fatal("Unable to start browser", zap.Error(err))
	}
	defer browser.Close()
	log.Info("Browser started", zap.Bool("headless", cfg.BrowserHeadless), zap.String("trigger_mode", cfg.TriggerMode))

	recordExtractor, err := newExtractor(cfg.SelectorsFile)
	if err != nil {
		log.Fatal("Unable to load selectors", zap.String("file", cfg.SelectorsFile), zap.Error(err))
	}

	defaults := collector.Config{
		StagnationLimit: cfg.StagnationLimit,
		MaxRecords:      cfg.MaxRecords,
		MaxPasses:       cfg.MaxPasses,
		SettleDelay:     cfg.SettleDelay,
		MaxDuration:     cfg.RunTimeout,
	}
	collection := usecase.NewCollectionUseCase(
		redis_adapter.NewQueueRepo(rdb),
		postgres.NewRunRepo(dbpool),
		postgres.NewProfileRepo(dbpool),
		browser,
		recordExtractor,
		defaults,
		log.Named("collection"),
	)

	pool := worker.NewPool(collection, worker.Config{
		Workers:       cfg.Workers,
		RunsPerMinute: cfg.RunsPerMinute,
		PollInterval:  cfg.QueuePollInterval,
	}, log.Named("worker"))
	pool.Start(ctx)

	<-ctx.Done()
	log.Info("Shutting down workers")
	pool.Stop()
	log.Info("Worker exiting")
}

func newExtractor(selectorsFile string) (*extractor.Extractor, error) {
	if selectorsFile == "" {
		return extractor.New(), nil
	}
	f, err := os.Open(selectorsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	markers, err := extractor.LoadMarkers(f)
	if err != nil {
		return nil, err
	}
	return extractor.New(extractor.WithMarkers(markers)), nil
}
