package calculator

import (
	"errors"
	"math"

	"StockBoard/internal/model"
)

// CalculateRange returns the highest high and lowest low over all points.
// The window is whatever the fetcher returned; nothing is re-clipped here.
func CalculateRange(points []model.HistoryPoint) (high, low float64, err error) {
	if len(points) == 0 {
		return 0, 0, errors.New("no history points provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range points {
		if p.High > high {
			high = p.High
		}
		if p.Low < low {
			low = p.Low
		}
	}
	return high, low, nil
}
