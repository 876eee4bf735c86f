package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"StockBoard/internal/model"
)

// SnapshotRefresher reloads the cached market snapshot.
type SnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context) (*model.SnapshotTable, error)
}

// Scheduler manages the background refresh jobs.
type Scheduler struct {
	Cron      *cron.Cron
	Refresher SnapshotRefresher
	Logger    *zap.Logger
	Timeout   time.Duration
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, refresher SnapshotRefresher, timeout time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Refresher: refresher,
		Logger:    logger,
		Timeout:   timeout,
		Ctx:       ctx,
	}
}

// RegisterAll registers the snapshot refresh job.
func (s *Scheduler) RegisterAll(snapshotCron string) error {
	if _, err := s.Cron.AddFunc(snapshotCron, s.refreshSnapshot); err != nil {
		return fmt.Errorf("register snapshot refresh: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RefreshNow runs the snapshot refresh immediately (used to warm the cache on start).
func (s *Scheduler) RefreshNow() error {
	return s.refresh()
}

func (s *Scheduler) refreshSnapshot() {
	if err := s.refresh(); err != nil {
		s.Logger.Warn("scheduled snapshot refresh failed", zap.Error(err))
	}
}

func (s *Scheduler) refresh() error {
	ctx := s.Ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	table, err := s.Refresher.RefreshSnapshot(ctx)
	if err != nil {
		return err
	}
	s.Logger.Info("snapshot refreshed", zap.Int("records", len(table.Records)))
	return nil
}
