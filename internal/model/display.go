package model

import "github.com/shopspring/decimal"

// DerivedMetrics are summary statistics computed from a HistorySeries.
type DerivedMetrics struct {
	HighPrice     decimal.Decimal `json:"high_price"`
	LowPrice      decimal.Decimal `json:"low_price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	TodayOpen     decimal.Decimal `json:"today_open"`
	High52w       decimal.Decimal `json:"high_52w"`
	Low52w        decimal.Decimal `json:"low_52w"`
}

// DisplayRecord merges a snapshot row with its derived metrics.
// Metrics is nil when the history was too short to derive them.
type DisplayRecord struct {
	Ticker        int             `json:"ticker"`
	Name          string          `json:"name"`
	EnglishName   string          `json:"english_name"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Metrics       *DerivedMetrics `json:"metrics,omitempty"`
}

// NewDisplayRecord assembles a record from a snapshot row. metrics may be nil.
func NewDisplayRecord(rec TickerRecord, metrics *DerivedMetrics) DisplayRecord {
	return DisplayRecord{
		Ticker:        rec.Ticker,
		Name:          rec.LocalName,
		EnglishName:   rec.EnglishName,
		Price:         rec.LastTradePrice,
		Change:        rec.Change,
		ChangePercent: rec.ChangePercent,
		Metrics:       metrics,
	}
}
