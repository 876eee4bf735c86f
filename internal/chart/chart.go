// Package chart turns a daily history into a figure with technical indicators.
package chart

import (
	"errors"
	"fmt"
	"math"

	"StockBoard/internal/calculator"
	"StockBoard/internal/model"
)

// Params selects the indicators drawn on the figure.
type Params struct {
	SMAPeriods      []int   `json:"sma_periods"`
	RSIPeriod       int     `json:"rsi_period"`
	BollingerPeriod int     `json:"bollinger_period"`
	BollingerWidth  float64 `json:"bollinger_width"`
	Volume          bool    `json:"volume"`
	MACD            bool    `json:"macd"`
	MACDFast        int     `json:"macd_fast"`
	MACDSlow        int     `json:"macd_slow"`
	MACDSignal      int     `json:"macd_signal"`
}

// DefaultParams mirrors the dashboard's standard layout.
func DefaultParams() Params {
	return Params{
		SMAPeriods:      []int{14, 10, 50},
		RSIPeriod:       14,
		BollingerPeriod: 20,
		BollingerWidth:  2,
		Volume:          true,
		MACD:            true,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
	}
}

// MaxPeriod bounds every indicator window; ten years of daily bars is about 2500.
const MaxPeriod = 2520

// Validate checks the periods. Zero RSI or Bollinger period disables that indicator.
func (p Params) Validate() error {
	for _, n := range p.SMAPeriods {
		if n <= 0 || n > MaxPeriod {
			return fmt.Errorf("sma period %d must be in 1..%d", n, MaxPeriod)
		}
	}
	if p.RSIPeriod < 0 || p.RSIPeriod > MaxPeriod {
		return fmt.Errorf("rsi period must be in 0..%d", MaxPeriod)
	}
	if p.BollingerPeriod < 0 || p.BollingerPeriod > MaxPeriod {
		return fmt.Errorf("bollinger period must be in 0..%d", MaxPeriod)
	}
	if p.BollingerPeriod > 0 && p.BollingerWidth <= 0 {
		return errors.New("bollinger width must be positive")
	}
	if p.MACD && (p.MACDFast <= 0 || p.MACDSlow <= p.MACDFast || p.MACDSignal <= 0) {
		return errors.New("macd periods must satisfy 0 < fast < slow and signal > 0")
	}
	if p.MACD && (p.MACDSlow > MaxPeriod || p.MACDSignal > MaxPeriod) {
		return fmt.Errorf("macd periods must not exceed %d", MaxPeriod)
	}
	return nil
}

// Trace is one plotted line or bar series. Nil values are gaps.
type Trace struct {
	Name   string     `json:"name"`
	Kind   string     `json:"kind"`
	Color  string     `json:"color,omitempty"`
	Fill   bool       `json:"fill,omitempty"`
	Values []*float64 `json:"values"`
}

// Panel is a sub-chart below the price chart.
type Panel struct {
	Name   string  `json:"name"`
	Traces []Trace `json:"traces"`
}

// Candles holds the OHLC arrays.
type Candles struct {
	Open  []float64 `json:"open"`
	High  []float64 `json:"high"`
	Low   []float64 `json:"low"`
	Close []float64 `json:"close"`
}

// Figure is a renderable chart description.
type Figure struct {
	Title     string   `json:"title"`
	Symbol    string   `json:"symbol"`
	Dates     []string `json:"dates"`
	Candles   Candles  `json:"candles"`
	UpColor   string   `json:"up_color"`
	DownColor string   `json:"down_color"`
	Overlays  []Trace  `json:"overlays"`
	Panels    []Panel  `json:"panels"`
}

// Renderer produces a figure from a history series.
type Renderer interface {
	Render(title string, series *model.HistorySeries, params Params) (*Figure, error)
}

var smaColors = []string{"blue", "red", "purple", "teal", "brown"}

// IndicatorRenderer computes indicators with the calculator package.
type IndicatorRenderer struct{}

// NewIndicatorRenderer returns the default renderer.
func NewIndicatorRenderer() *IndicatorRenderer { return &IndicatorRenderer{} }

// Render builds the candlestick figure with SMA, Bollinger, volume, RSI and MACD.
func (r *IndicatorRenderer) Render(title string, series *model.HistorySeries, params Params) (*Figure, error) {
	if series == nil || len(series.Points) == 0 {
		return nil, errors.New("render: empty series")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	n := len(series.Points)
	fig := &Figure{
		Title:     title,
		Symbol:    series.Symbol,
		Dates:     make([]string, n),
		UpColor:   "green",
		DownColor: "red",
		Candles: Candles{
			Open:  make([]float64, n),
			High:  make([]float64, n),
			Low:   make([]float64, n),
			Close: make([]float64, n),
		},
	}
	volumes := make([]float64, n)
	for i, p := range series.Points {
		fig.Dates[i] = p.Date.Format("2006-01-02")
		fig.Candles.Open[i] = p.Open
		fig.Candles.High[i] = p.High
		fig.Candles.Low[i] = p.Low
		fig.Candles.Close[i] = p.Close
		volumes[i] = float64(p.Volume)
	}
	closes := fig.Candles.Close

	for i, period := range params.SMAPeriods {
		sma, err := calculator.SMASeries(closes, period)
		if err != nil {
			return nil, err
		}
		fig.Overlays = append(fig.Overlays, Trace{
			Name:   fmt.Sprintf("SMA(%d)", period),
			Kind:   "line",
			Color:  smaColors[i%len(smaColors)],
			Values: nullable(sma),
		})
	}

	if params.BollingerPeriod > 0 {
		b, err := calculator.BollingerBands(closes, params.BollingerPeriod, params.BollingerWidth)
		if err != nil {
			return nil, err
		}
		label := fmt.Sprintf("BOLL(%d,%g)", params.BollingerPeriod, params.BollingerWidth)
		fig.Overlays = append(fig.Overlays,
			Trace{Name: label + " upper", Kind: "line", Color: "orange", Values: nullable(b.Upper)},
			Trace{Name: label + " middle", Kind: "line", Color: "grey", Values: nullable(b.Middle)},
			Trace{Name: label + " lower", Kind: "line", Color: "orange", Fill: true, Values: nullable(b.Lower)},
		)
	}

	if params.Volume {
		fig.Panels = append(fig.Panels, Panel{
			Name:   "Volume",
			Traces: []Trace{{Name: "Volume", Kind: "bar", Color: "steelblue", Values: nullable(volumes)}},
		})
	}

	if params.RSIPeriod > 0 {
		rsi, err := calculator.RSISeries(closes, params.RSIPeriod)
		if err != nil {
			return nil, err
		}
		fig.Panels = append(fig.Panels, Panel{
			Name:   fmt.Sprintf("RSI(%d)", params.RSIPeriod),
			Traces: []Trace{{Name: "RSI", Kind: "line", Color: "green", Values: nullable(rsi)}},
		})
	}

	if params.MACD {
		m, err := calculator.MACD(closes, params.MACDFast, params.MACDSlow, params.MACDSignal)
		if err != nil {
			return nil, err
		}
		fig.Panels = append(fig.Panels, Panel{
			Name: fmt.Sprintf("MACD(%d,%d,%d)", params.MACDFast, params.MACDSlow, params.MACDSignal),
			Traces: []Trace{
				{Name: "MACD", Kind: "line", Color: "blue", Values: nullable(m.MACD)},
				{Name: "Signal", Kind: "line", Color: "red", Values: nullable(m.Signal)},
				{Name: "Histogram", Kind: "bar", Color: "grey", Values: nullable(m.Histogram)},
			},
		})
	}

	return fig, nil
}

// nullable converts NaN warm-up values into JSON nulls.
func nullable(vals []float64) []*float64 {
	out := make([]*float64, len(vals))
	for i := range vals {
		if math.IsNaN(vals[i]) || math.IsInf(vals[i], 0) {
			continue
		}
		v := vals[i]
		out[i] = &v
	}
	return out
}
