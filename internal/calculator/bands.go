package calculator

import (
	"errors"
	"math"
)

// Bands holds the Bollinger middle, upper and lower lines.
type Bands struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// BollingerBands computes bands at width standard deviations around a
// period SMA, using the population standard deviation of the window.
func BollingerBands(closes []float64, period int, width float64) (*Bands, error) {
	if width <= 0 {
		return nil, errors.New("band width must be positive")
	}
	mid, err := SMASeries(closes, period)
	if err != nil {
		return nil, err
	}
	b := &Bands{Middle: mid, Upper: nanSlice(len(closes)), Lower: nanSlice(len(closes))}
	for i := period - 1; i < len(closes); i++ {
		var ss float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mid[i]
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(period))
		b.Upper[i] = mid[i] + width*sd
		b.Lower[i] = mid[i] - width*sd
	}
	return b, nil
}

// MACDResult holds the MACD line, its signal line and the histogram.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes fast EMA minus slow EMA and a signal EMA over it.
func MACD(closes []float64, fast, slow, signal int) (*MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, errors.New("periods must be positive")
	}
	if fast >= slow {
		return nil, errors.New("fast period must be shorter than slow period")
	}
	fastEMA, _ := EMASeries(closes, fast)
	slowEMA, _ := EMASeries(closes, slow)

	res := &MACDResult{
		MACD:      nanSlice(len(closes)),
		Signal:    nanSlice(len(closes)),
		Histogram: nanSlice(len(closes)),
	}
	start := slow - 1
	if start >= len(closes) {
		return res, nil
	}
	for i := start; i < len(closes); i++ {
		res.MACD[i] = fastEMA[i] - slowEMA[i]
	}
	sig, _ := EMASeries(res.MACD[start:], signal)
	for i, v := range sig {
		res.Signal[start+i] = v
		if !math.IsNaN(v) {
			res.Histogram[start+i] = res.MACD[start+i] - v
		}
	}
	return res, nil
}
