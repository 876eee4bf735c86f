package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, 1e-9)

	_, err = CalculateSMA([]float64{1, 2}, 3)
	assert.Error(t, err)
	_, err = CalculateSMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestSMASeries(t *testing.T) {
	out, err := SMASeries([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	require.Len(t, out, 5)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestEMASeries_SeededWithSMA(t *testing.T) {
	out, err := EMASeries([]float64{2, 4, 6, 8}, 3)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 4.0, out[2], 1e-9)
	// k = 0.5: 8*0.5 + 4*0.5
	assert.InDelta(t, 6.0, out[3], 1e-9)
}

func TestRSISeries(t *testing.T) {
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = float64(i + 1)
	}
	out, err := RSISeries(rising, 14)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(out[13]))
	assert.InDelta(t, 100.0, out[14], 1e-9)
	assert.InDelta(t, 100.0, out[19], 1e-9)

	flat := []float64{5, 5, 5, 5}
	out, err = RSISeries(flat, 2)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, out[3], 1e-9)

	short, err := RSISeries([]float64{1, 2}, 14)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(short[1]))

	// exactly period closes have only period-1 changes
	exact, err := RSISeries(rising[:14], 14)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(exact[13]))

	huge, err := RSISeries(rising, math.MaxInt)
	require.NoError(t, err)
	require.Len(t, huge, len(rising))
	for _, v := range huge {
		assert.True(t, math.IsNaN(v))
	}
}

func TestBollingerBands(t *testing.T) {
	b, err := BollingerBands([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8, 2)
	require.NoError(t, err)
	// mean 5, population sd 2
	assert.InDelta(t, 5.0, b.Middle[7], 1e-9)
	assert.InDelta(t, 9.0, b.Upper[7], 1e-9)
	assert.InDelta(t, 1.0, b.Lower[7], 1e-9)
	assert.True(t, math.IsNaN(b.Upper[6]))

	_, err = BollingerBands([]float64{1, 2, 3}, 2, 0)
	assert.Error(t, err)
}

func TestMACD(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	res, err := MACD(closes, 12, 26, 9)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(res.MACD[24]))
	assert.False(t, math.IsNaN(res.MACD[25]))
	assert.True(t, math.IsNaN(res.Signal[32]))
	assert.False(t, math.IsNaN(res.Signal[33]))
	// steady uptrend: fast EMA above slow EMA
	assert.Greater(t, res.MACD[59], 0.0)
	assert.InDelta(t, res.MACD[59]-res.Signal[59], res.Histogram[59], 1e-9)

	_, err = MACD(closes, 26, 12, 9)
	assert.Error(t, err)
}
