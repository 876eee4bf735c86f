package collector

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"StockBoard/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// It serves both the snapshot and the history so the board runs offline.
type MockFetcher struct {
	Price   float64
	Days    int
	Series  map[int][]model.HistoryPoint
	Records []model.TickerRecord
}

var mockRecords = []model.TickerRecord{
	{Ticker: 1010, EnglishName: "RIBL", LocalName: "الرياض", LastTradePrice: decimal.RequireFromString("27.10"),
		Change: decimal.RequireFromString("0.15"), ChangePercent: decimal.RequireFromString("0.56"),
		NoOfTrades: 4210, TurnOver: decimal.RequireFromString("48211020.40"), VolumeTraded: 1779113, AveTradeSize: decimal.RequireFromString("422.59")},
	{Ticker: 2222, EnglishName: "SAUDI ARAMCO", LocalName: "أرامكو السعودية", LastTradePrice: decimal.RequireFromString("32.50"),
		Change: decimal.RequireFromString("-0.20"), ChangePercent: decimal.RequireFromString("-0.61"),
		NoOfTrades: 15873, TurnOver: decimal.RequireFromString("312550120.80"), VolumeTraded: 9613405, AveTradeSize: decimal.RequireFromString("605.64")},
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSnapshot(_ context.Context) (*model.SnapshotTable, error) {
	recs := m.Records
	if recs == nil {
		recs = mockRecords
	}
	return &model.SnapshotTable{Records: recs, FetchedAt: time.Now()}, nil
}

func (m *MockFetcher) FetchHistory(_ context.Context, ticker int) (*model.HistorySeries, error) {
	series := &model.HistorySeries{
		Ticker:    ticker,
		Symbol:    strconv.Itoa(ticker) + DefaultMarketSuffix,
		FetchedAt: time.Now(),
	}
	if pts, ok := m.Series[ticker]; ok {
		series.Points = pts
		return series, nil
	}
	days := m.Days
	if days == 0 {
		days = 2520
	}
	price := m.Price
	if price == 0 {
		price = float64(ticker%100) + 10
	}
	series.Points = generateMockBars(price, days, time.Now())
	return series, nil
}

func generateMockBars(basePrice float64, count int, end time.Time) []model.HistoryPoint {
	bars := make([]model.HistoryPoint, count)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.0001)
		bars[i] = model.HistoryPoint{
			Date:   last.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
