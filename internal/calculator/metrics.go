package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"StockBoard/internal/model"
)

// DisplayPrecision is the number of fractional digits kept in derived metrics.
const DisplayPrecision = 2

// Derive computes the summary metrics shown next to a snapshot row.
// At least two points are required because the previous close comes from
// the second-to-last bar.
func Derive(series *model.HistorySeries) (*model.DerivedMetrics, error) {
	if series == nil || len(series.Points) < 2 {
		n := 0
		if series != nil {
			n = len(series.Points)
		}
		return nil, fmt.Errorf("derive: %w: %d points, need 2", model.ErrInsufficientHistory, n)
	}

	pts := series.Points
	last, _ := series.Last()
	prev := pts[len(pts)-2]

	high, low, err := CalculateRange(pts)
	if err != nil {
		return nil, err
	}

	return &model.DerivedMetrics{
		HighPrice:     round(last.High),
		LowPrice:      round(last.Low),
		PreviousClose: round(prev.Close),
		TodayOpen:     round(last.Open),
		High52w:       round(high),
		Low52w:        round(low),
	}, nil
}

func round(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(DisplayPrecision)
}
