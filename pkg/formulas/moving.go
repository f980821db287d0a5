package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateSMA returns the latest simple moving average over length closes,
// or nil when there are fewer than length values.
func CalculateSMA(closes []float64, length int) *float64 {
	if length <= 0 || len(closes) < length {
		return nil
	}

	if v, ok := last(talib.Sma(closes, length)); ok {
		return &v
	}
	return nil
}

// CalculateEMA calculates the Exponential Moving Average
//
// EMA Formula:
//
//	EMA_today = (Price_today × multiplier) + (EMA_yesterday × (1 - multiplier))
//	where multiplier = 2 / (period + 1)
//
// Falls back to the plain mean when there is not enough data for the period.
func CalculateEMA(closes []float64, length int) *float64 {
	if len(closes) == 0 || length <= 0 {
		return nil
	}

	if len(closes) < length {
		sma := Mean(closes)
		return &sma
	}

	if v, ok := last(talib.Ema(closes, length)); ok {
		return &v
	}

	sma := Mean(closes[len(closes)-length:])
	return &sma
}

// MACD is the latest point of the moving average convergence/divergence oscillator.
type MACD struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// CalculateMACD computes MACD(fast, slow, signal) on closes and returns the
// most recent values, or nil if the series is shorter than the warm-up window.
func CalculateMACD(closes []float64, fast, slow, signal int) *MACD {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return nil
	}
	if len(closes) < slow+signal-1 {
		return nil
	}

	macd, sig, hist := talib.Macd(closes, fast, slow, signal)
	m, ok1 := last(macd)
	s, ok2 := last(sig)
	h, ok3 := last(hist)
	if !ok1 || !ok2 || !ok3 {
		return nil
	}

	return &MACD{MACD: m, Signal: s, Histogram: h}
}
