package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"StockBoard/internal/model"
)

const (
	// DefaultYahooBaseURL is the Yahoo Finance chart API host.
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com"
	// DefaultMarketSuffix qualifies a Tadawul identifier as a Yahoo symbol.
	DefaultMarketSuffix = ".SR"
	// DefaultLookback is the Yahoo range for the daily history.
	DefaultLookback = "10y"
)

// YahooFetcher implements HistoryFetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL  string
	Suffix   string
	Lookback string
	Client   *http.Client
	Logger   *zap.Logger
	now      func() time.Time
}

// NewYahooFetcher creates a Yahoo Finance history fetcher.
func NewYahooFetcher(baseURL, suffix, lookback string, timeout time.Duration, proxyURL string, logger *zap.Logger) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	if suffix == "" {
		suffix = DefaultMarketSuffix
	}
	if lookback == "" {
		lookback = DefaultLookback
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YahooFetcher{
		BaseURL:  baseURL,
		Suffix:   suffix,
		Lookback: lookback,
		Client:   newHTTPClient(timeout, proxyURL),
		Logger:   logger,
		now:      time.Now,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// Symbol maps a ticker identifier to its market-qualified Yahoo symbol.
func (f *YahooFetcher) Symbol(ticker int) string {
	return strconv.Itoa(ticker) + f.Suffix
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol     string `json:"symbol"`
				GMTOffset  int    `json:"gmtoffset"`
				ExchangeTZ string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchHistory downloads the daily bars for ticker over the configured lookback.
func (f *YahooFetcher) FetchHistory(ctx context.Context, ticker int) (*model.HistorySeries, error) {
	symbol := f.Symbol(ticker)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		f.BaseURL, url.PathEscape(symbol), url.QueryEscape(f.Lookback))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w: %w", symbol, model.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body %s: %w: %w", symbol, model.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, model.ErrSymbolNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo %s: %w: status %d", symbol, model.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode %s: %w: %v", symbol, model.ErrUpstreamUnavailable, err)
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("yahoo %s: %w: %s", symbol, model.ErrSymbolNotFound, chart.Chart.Error.Description)
		}
		return nil, fmt.Errorf("yahoo api error %s: %w: %s", symbol, model.ErrUpstreamUnavailable, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w: no result", symbol, model.ErrSymbolNotFound)
	}

	series := &model.HistorySeries{
		Ticker:    ticker,
		Symbol:    symbol,
		FetchedAt: f.now(),
	}
	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		f.Logger.Info("yahoo returned an empty series", zap.String("symbol", symbol))
		return series, nil
	}

	loc := time.FixedZone("exchange", result.Meta.GMTOffset)
	if result.Meta.ExchangeTZ != "" {
		if l, err := time.LoadLocation(result.Meta.ExchangeTZ); err == nil {
			loc = l
		}
	}

	quote := result.Indicators.Quote[0]
	points := make([]model.HistoryPoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == nil || h == nil || l == nil || c == nil {
			continue // null bars (holidays etc.)
		}
		var vol int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			vol = *quote.Volume[i]
		}
		points = append(points, model.HistoryPoint{
			Date:   tradingDay(ts, loc),
			Open:   *o,
			High:   *h,
			Low:    *l,
			Close:  *c,
			Volume: vol,
		})
	}

	series.Points = dedupeByDate(points)
	f.Logger.Debug("history fetched", zap.String("symbol", symbol), zap.Int("bars", len(series.Points)))
	return series, nil
}

func at(vals []*float64, i int) *float64 {
	if i >= len(vals) {
		return nil
	}
	return vals[i]
}

// tradingDay truncates a bar timestamp to its calendar day in the exchange timezone.
func tradingDay(ts int64, loc *time.Location) time.Time {
	t := time.Unix(ts, 0).In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dedupeByDate sorts points ascending and keeps the last bar seen for each day.
func dedupeByDate(points []model.HistoryPoint) []model.HistoryPoint {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	out := points[:0]
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
