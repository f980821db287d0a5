// Package formulas holds the numeric building blocks used by market analysis:
// moving averages, momentum oscillators and basic descriptive statistics.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// CalculateReturns converts prices to fractional period returns.
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]; zero prices are skipped.
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	return returns
}

func isNaN(f float64) bool {
	return math.IsNaN(f)
}

func last(values []float64) (float64, bool) {
	if len(values) == 0 || isNaN(values[len(values)-1]) {
		return 0, false
	}
	return values[len(values)-1], true
}
