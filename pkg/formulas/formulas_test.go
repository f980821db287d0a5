package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	assert.InDelta(t, 1.0, StdDev([]float64{1, 2, 3}), 1e-9)
}

func TestCalculateReturns(t *testing.T) {
	returns := CalculateReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)

	assert.Empty(t, CalculateReturns([]float64{100}))
}

func TestCalculateSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}

	sma := CalculateSMA(closes, 5)
	require.NotNil(t, sma)
	assert.InDelta(t, 4.0, *sma, 1e-9)

	assert.Nil(t, CalculateSMA(closes[:3], 5))
}

func TestCalculateEMA_FallsBackToMean(t *testing.T) {
	ema := CalculateEMA([]float64{2, 4}, 10)
	require.NotNil(t, ema)
	assert.InDelta(t, 3.0, *ema, 1e-9)

	assert.Nil(t, CalculateEMA(nil, 10))
}

func TestCalculateEMA_ConstantSeries(t *testing.T) {
	ema := CalculateEMA(series(30, 7, 0), 12)
	require.NotNil(t, ema)
	assert.InDelta(t, 7.0, *ema, 1e-9)
}

func TestCalculateMACD(t *testing.T) {
	assert.Nil(t, CalculateMACD(series(20, 10, 1), 12, 26, 9))

	rising := CalculateMACD(series(60, 10, 1), 12, 26, 9)
	require.NotNil(t, rising)
	assert.Greater(t, rising.MACD, 0.0)

	falling := CalculateMACD(series(60, 100, -1), 12, 26, 9)
	require.NotNil(t, falling)
	assert.Less(t, falling.MACD, 0.0)
}

func TestCalculateRSI(t *testing.T) {
	assert.Nil(t, CalculateRSI(series(10, 1, 1), 14))

	up := CalculateRSI(series(30, 1, 1), 14)
	require.NotNil(t, up)
	assert.InDelta(t, 100.0, *up, 1e-6)

	down := CalculateRSI(series(30, 100, -1), 14)
	require.NotNil(t, down)
	assert.InDelta(t, 0.0, *down, 1e-6)
}
