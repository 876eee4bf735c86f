package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"StockBoard/internal/cache"
	"StockBoard/internal/calculator"
	"StockBoard/internal/collector"
	"StockBoard/internal/model"
)

// Selection is the result of choosing one ticker: the merged display
// record, the history behind it, and a notice when the display is partial.
type Selection struct {
	Record model.DisplayRecord
	Series *model.HistorySeries
	Notice string
}

// Partial reports whether metrics are missing from the record.
func (s *Selection) Partial() bool { return s.Record.Metrics == nil }

type snapshotKey struct{}

// Service orchestrates snapshot lookup, history fetch and metric derivation.
type Service struct {
	Snapshots collector.SnapshotFetcher
	History   collector.HistoryFetcher
	Logger    *zap.Logger

	snapshotCache *cache.Cache[snapshotKey, *model.SnapshotTable]
	historyCache  *cache.Cache[int, *model.HistorySeries]
}

// NewService creates a Service whose caches share one TTL.
func NewService(snap collector.SnapshotFetcher, hist collector.HistoryFetcher, ttl time.Duration, logger *zap.Logger, opts ...cache.Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Snapshots:     snap,
		History:       hist,
		Logger:        logger,
		snapshotCache: cache.New[snapshotKey, *model.SnapshotTable](ttl, opts...),
		historyCache:  cache.New[int, *model.HistorySeries](ttl, opts...),
	}
}

// Snapshot returns the current market snapshot, fetching it when the cache is cold.
func (s *Service) Snapshot(ctx context.Context) (*model.SnapshotTable, error) {
	return s.snapshotCache.GetOrLoad(ctx, snapshotKey{}, func(ctx context.Context) (*model.SnapshotTable, error) {
		s.Logger.Info("loading snapshot", zap.String("source", s.Snapshots.Name()))
		return s.Snapshots.FetchSnapshot(ctx)
	})
}

// Options returns the ticker selection list.
func (s *Service) Options(ctx context.Context) ([]model.SelectOption, error) {
	table, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return table.Options(), nil
}

// Series returns the cached daily series for ticker.
func (s *Service) Series(ctx context.Context, ticker int) (*model.HistorySeries, error) {
	return s.historyCache.GetOrLoad(ctx, ticker, func(ctx context.Context) (*model.HistorySeries, error) {
		s.Logger.Info("loading history", zap.Int("ticker", ticker), zap.String("source", s.History.Name()))
		return s.History.FetchHistory(ctx, ticker)
	})
}

// Select resolves ticker against the snapshot, then fetches its history and
// derives metrics. History is never requested for a ticker missing from the
// snapshot. Short history yields a partial record rather than an error.
func (s *Service) Select(ctx context.Context, ticker int) (*Selection, error) {
	table, err := s.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("select %d: %w", ticker, err)
	}
	rec, ok := table.Lookup(ticker)
	if !ok {
		return nil, fmt.Errorf("select %d: %w", ticker, model.ErrTickerNotInSnapshot)
	}

	series, err := s.Series(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("select %d: %w", ticker, err)
	}

	sel := &Selection{Series: series}
	metrics, err := calculator.Derive(series)
	switch {
	case err == nil:
		sel.Record = model.NewDisplayRecord(rec, metrics)
	case errors.Is(err, model.ErrInsufficientHistory):
		s.Logger.Warn("partial display", zap.Int("ticker", ticker), zap.Int("bars", series.Len()))
		sel.Record = model.NewDisplayRecord(rec, nil)
		sel.Notice = fmt.Sprintf("Not enough trading history for %s to compute price statistics.", series.Symbol)
	default:
		return nil, fmt.Errorf("select %d: %w", ticker, err)
	}
	return sel, nil
}

// RefreshSnapshot drops the cached snapshot and loads a new one.
func (s *Service) RefreshSnapshot(ctx context.Context) (*model.SnapshotTable, error) {
	s.snapshotCache.Invalidate(snapshotKey{})
	return s.Snapshot(ctx)
}

// Invalidate clears both caches.
func (s *Service) Invalidate() {
	s.snapshotCache.InvalidateAll()
	s.historyCache.InvalidateAll()
	s.Logger.Info("caches invalidated")
}

// CacheStats reports snapshot and history cache counters.
func (s *Service) CacheStats() (snapshot, history cache.Stats) {
	return s.snapshotCache.Stats(), s.historyCache.Stats()
}
