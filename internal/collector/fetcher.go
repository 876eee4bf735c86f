package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"StockBoard/internal/model"
)

// SnapshotFetcher retrieves the full-market snapshot.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) (*model.SnapshotTable, error)
	Name() string
}

// HistoryFetcher retrieves the daily history for one ticker.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, ticker int) (*model.HistorySeries, error)
	Name() string
}

const userAgent = "Mozilla/5.0"

// newHTTPClient builds a client with a hard timeout and optional proxy.
func newHTTPClient(timeout time.Duration, proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
