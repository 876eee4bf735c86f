package model

import "time"

// HistoryPoint is one daily bar.
type HistoryPoint struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// HistorySeries holds the daily bars for one ticker, ascending by date.
// An empty series is valid for symbols that are listed but not trading.
type HistorySeries struct {
	Ticker    int
	Symbol    string
	Points    []HistoryPoint
	FetchedAt time.Time
}

// Len returns the number of bars in the series.
func (s *HistorySeries) Len() int { return len(s.Points) }

// Last returns the most recent bar; ok is false for an empty series.
func (s *HistorySeries) Last() (p HistoryPoint, ok bool) {
	if len(s.Points) == 0 {
		return p, false
	}
	return s.Points[len(s.Points)-1], true
}
