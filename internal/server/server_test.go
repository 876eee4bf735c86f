package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockBoard/internal/cache"
	"StockBoard/internal/chart"
	"StockBoard/internal/dashboard"
	"StockBoard/internal/model"
)

type fakeBoard struct {
	options     []model.SelectOption
	selection   *dashboard.Selection
	err         error
	invalidated int
}

func (f *fakeBoard) Options(context.Context) ([]model.SelectOption, error) {
	return f.options, f.err
}

func (f *fakeBoard) Select(_ context.Context, ticker int) (*dashboard.Selection, error) {
	if f.err != nil {
		return nil, fmt.Errorf("select %d: %w", ticker, f.err)
	}
	return f.selection, nil
}

func (f *fakeBoard) Invalidate() { f.invalidated++ }

func (f *fakeBoard) CacheStats() (cache.Stats, cache.Stats) {
	return cache.Stats{Hits: 1}, cache.Stats{Misses: 2}
}

func history(n int) *model.HistorySeries {
	s := &model.HistorySeries{Ticker: 2222, Symbol: "2222.SR"}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := 30 + float64(i%7)
		s.Points = append(s.Points, model.HistoryPoint{
			Date: start.AddDate(0, 0, i), Open: c - 0.5, High: c + 1, Low: c - 1, Close: c, Volume: int64(1000 + i),
		})
	}
	return s
}

func aramcoSelection(n int) *dashboard.Selection {
	return &dashboard.Selection{
		Record: model.DisplayRecord{
			Ticker: 2222, Name: "أرامكو", EnglishName: "Aramco",
			Price:   decimal.RequireFromString("32.50"),
			Metrics: &model.DerivedMetrics{High52w: decimal.NewFromInt(36)},
		},
		Series: history(n),
	}
}

func do(t *testing.T, s *Server, method, target string) (int, []byte) {
	t.Helper()
	resp, err := s.App.Test(httptest.NewRequest(method, target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestIndexPage(t *testing.T) {
	s := New(&fakeBoard{}, chart.NewIndicatorRenderer(), nil)
	code, body := do(t, s, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "Indicators Explanation")
	assert.Contains(t, string(body), "Select Ticker")
}

func TestListTickers(t *testing.T) {
	board := &fakeBoard{options: []model.SelectOption{{Value: 1010, Label: "الرياض (1010)"}, {Value: 2222, Label: "أرامكو (2222)"}}}
	s := New(board, chart.NewIndicatorRenderer(), nil)

	code, body := do(t, s, http.MethodGet, "/api/tickers")
	require.Equal(t, http.StatusOK, code)
	var got []model.SelectOption
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, board.options, got)
}

func TestGetTicker(t *testing.T) {
	s := New(&fakeBoard{selection: aramcoSelection(60)}, chart.NewIndicatorRenderer(), nil)

	code, body := do(t, s, http.MethodGet, "/api/tickers/2222")
	require.Equal(t, http.StatusOK, code)
	var got struct {
		Record struct {
			Ticker  int    `json:"ticker"`
			Name    string `json:"name"`
			Price   string `json:"price"`
			Metrics *struct {
				High52w string `json:"high_52w"`
			} `json:"metrics"`
		} `json:"record"`
		Notice string `json:"notice"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 2222, got.Record.Ticker)
	assert.Equal(t, "أرامكو", got.Record.Name)
	assert.Equal(t, "32.5", got.Record.Price)
	require.NotNil(t, got.Record.Metrics)
	assert.Equal(t, "36", got.Record.Metrics.High52w)
	assert.Empty(t, got.Notice)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target string
		want   int
	}{
		{"not in snapshot", model.ErrTickerNotInSnapshot, "/api/tickers/9999", http.StatusNotFound},
		{"symbol not found", model.ErrSymbolNotFound, "/api/tickers/9999", http.StatusNotFound},
		{"upstream", model.ErrUpstreamUnavailable, "/api/tickers/2222", http.StatusServiceUnavailable},
		{"malformed", model.ErrMalformedResponse, "/api/tickers/2222", http.StatusBadGateway},
		{"unexpected", fmt.Errorf("boom"), "/api/tickers/2222", http.StatusInternalServerError},
		{"options upstream", model.ErrUpstreamUnavailable, "/api/tickers", http.StatusServiceUnavailable},
		{"bad ticker", nil, "/api/tickers/abc", http.StatusBadRequest},
		{"negative ticker", nil, "/api/tickers/-5", http.StatusBadRequest},
		{"bad sma", nil, "/api/tickers/2222/chart?sma=10,x", http.StatusBadRequest},
		{"bad rsi", nil, "/api/tickers/2222/chart?rsi=zero", http.StatusBadRequest},
		{"bad bbstd", nil, "/api/tickers/2222/chart?bbstd=-1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&fakeBoard{err: tt.err, selection: aramcoSelection(60)}, chart.NewIndicatorRenderer(), nil)
			code, body := do(t, s, http.MethodGet, tt.target)
			assert.Equal(t, tt.want, code)
			var e map[string]string
			require.NoError(t, json.Unmarshal(body, &e))
			assert.NotEmpty(t, e["error"])
		})
	}
}

func TestGetChart(t *testing.T) {
	s := New(&fakeBoard{selection: aramcoSelection(60)}, chart.NewIndicatorRenderer(), nil)

	code, body := do(t, s, http.MethodGet, "/api/tickers/2222/chart?sma=5,20&macd=false")
	require.Equal(t, http.StatusOK, code)
	var fig chart.Figure
	require.NoError(t, json.Unmarshal(body, &fig))
	assert.Equal(t, "أرامكو Stock Price", fig.Title)
	assert.Len(t, fig.Dates, 60)
	assert.Equal(t, "SMA(5)", fig.Overlays[0].Name)
	assert.Equal(t, "SMA(20)", fig.Overlays[1].Name)
	assert.Nil(t, fig.Overlays[0].Values[0])
	assert.NotNil(t, fig.Overlays[0].Values[4])

	var panels []string
	for _, p := range fig.Panels {
		panels = append(panels, p.Name)
	}
	assert.Equal(t, []string{"Volume", "RSI(14)"}, panels)
}

func TestGetChart_EmptySeries(t *testing.T) {
	s := New(&fakeBoard{selection: aramcoSelection(0)}, chart.NewIndicatorRenderer(), nil)
	code, _ := do(t, s, http.MethodGet, "/api/tickers/2222/chart")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestClearCacheAndHealth(t *testing.T) {
	board := &fakeBoard{}
	s := New(board, chart.NewIndicatorRenderer(), nil)

	code, _ := do(t, s, http.MethodDelete, "/api/cache")
	assert.Equal(t, http.StatusNoContent, code)
	assert.Equal(t, 1, board.invalidated)

	code, body := do(t, s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, code)
	var h struct {
		Status   string      `json:"status"`
		Snapshot cache.Stats `json:"snapshot_cache"`
		History  cache.Stats `json:"history_cache"`
	}
	require.NoError(t, json.Unmarshal(body, &h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, int64(1), h.Snapshot.Hits)
	assert.Equal(t, int64(2), h.History.Misses)
}

func TestRequestID(t *testing.T) {
	s := New(&fakeBoard{}, chart.NewIndicatorRenderer(), nil)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc")
	resp, err = s.App.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Header.Get("X-Request-ID"))
}

func TestGetChart_HugePeriodIsRejected(t *testing.T) {
	s := New(&fakeBoard{selection: aramcoSelection(40)}, chart.NewIndicatorRenderer(), nil)
	for _, q := range []string{"rsi=9223372036854775807", "bb=9223372036854775807", "sma=9223372036854775807"} {
		code, body := do(t, s, http.MethodGet, "/api/tickers/2222/chart?"+q)
		assert.Equal(t, http.StatusBadRequest, code, q)
		assert.Contains(t, string(body), "error")
	}
}

type panickyRenderer struct{}

func (panickyRenderer) Render(string, *model.HistorySeries, chart.Params) (*chart.Figure, error) {
	panic("renderer bug")
}

func TestPanicBecomesServerError(t *testing.T) {
	s := New(&fakeBoard{selection: aramcoSelection(40)}, panickyRenderer{}, nil)
	code, body := do(t, s, http.MethodGet, "/api/tickers/2222/chart")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, string(body), "renderer bug")

	// the app keeps serving afterwards
	code, _ = do(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, code)
}
