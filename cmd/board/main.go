package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"StockBoard/internal/chart"
	"StockBoard/internal/collector"
	"StockBoard/internal/config"
	"StockBoard/internal/dashboard"
	"StockBoard/internal/logging"
	"StockBoard/internal/scheduler"
	"StockBoard/internal/server"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic("load config: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		panic("config validation: " + err.Error())
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logger.Sync()
	logger.Info("StockBoard starting...", zap.String("config", cfgPath))

	// Init fetchers
	var (
		snapshots collector.SnapshotFetcher
		history   collector.HistoryFetcher
	)
	ds := cfg.DataSource
	if ds.HistoryProvider == "mock" {
		mock := &collector.MockFetcher{}
		snapshots, history = mock, mock
	} else {
		snapshots = collector.NewTadawulFetcher(ds.SnapshotURL, ds.Timeout, cfg.Proxy, logger)
		history = collector.NewYahooFetcher(ds.HistoryBaseURL, ds.MarketSuffix, ds.Lookback, ds.Timeout, cfg.Proxy, logger)
	}
	logger.Info("data sources", zap.String("snapshot", snapshots.Name()), zap.String("history", history.Name()))

	svc := dashboard.NewService(snapshots, history, cfg.Cache.TTL, logger)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, svc, ds.Timeout, logger)
	if err := sched.RegisterAll(cfg.Schedule.SnapshotRefreshCron); err != nil {
		logger.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	// Warm the snapshot cache; the board still starts when the exchange is unreachable.
	if err := sched.RefreshNow(); err != nil {
		logger.Warn("initial snapshot load failed", zap.Error(err))
	}

	srv := server.New(svc, chart.NewIndicatorRenderer(), logger)
	go func() {
		if err := srv.Listen(cfg.Server.Listen); err != nil {
			logger.Error("http server stopped", zap.Error(err))
			cancel()
		}
	}()

	logger.Info("StockBoard is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info("shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	if err := srv.Shutdown(); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	logger.Info("StockBoard stopped")
}
