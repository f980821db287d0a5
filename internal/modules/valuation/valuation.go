// Package valuation computes aggregate value, cost, return and category
// allocation for a set of holdings. All functions are pure and never fail:
// empty input yields zero values.
package valuation

import "github.com/aristath/finsight/internal/domain"

// Metrics bundles the valuation outputs for one set of holdings
type Metrics struct {
	TotalValue  float64                     `json:"total_value"`
	TotalCost   float64                     `json:"total_cost"`
	TotalReturn float64                     `json:"total_return"`
	Allocation  map[domain.Category]float64 `json:"allocation"`
}

// TotalValue returns Σ quantity × current price
func TotalValue(holdings []domain.Holding) float64 {
	total := 0.0
	for _, h := range holdings {
		total += h.MarketValue()
	}
	return total
}

// TotalCost returns Σ quantity × cost price
func TotalCost(holdings []domain.Holding) float64 {
	total := 0.0
	for _, h := range holdings {
		total += h.CostValue()
	}
	return total
}

// TotalReturn returns (value - cost) / cost. A zero cost basis is reported as
// a zero return, even when the holdings have value.
func TotalReturn(holdings []domain.Holding) float64 {
	cost := TotalCost(holdings)
	if cost == 0 {
		return 0
	}
	return (TotalValue(holdings) - cost) / cost
}

// Allocation returns each present category's fraction of total value.
// Categories without holdings are omitted; the map is empty when the
// holdings are worth nothing.
func Allocation(holdings []domain.Holding) map[domain.Category]float64 {
	allocation := make(map[domain.Category]float64)

	total := TotalValue(holdings)
	if total == 0 {
		return allocation
	}

	for _, h := range holdings {
		allocation[h.Category] += h.MarketValue() / total
	}
	return allocation
}

// CategoryValues returns the market value held in each category
func CategoryValues(holdings []domain.Holding) map[domain.Category]float64 {
	values := make(map[domain.Category]float64)
	for _, h := range holdings {
		values[h.Category] += h.MarketValue()
	}
	return values
}

// Calculate computes every metric in one call
func Calculate(holdings []domain.Holding) Metrics {
	return Metrics{
		TotalValue:  TotalValue(holdings),
		TotalCost:   TotalCost(holdings),
		TotalReturn: TotalReturn(holdings),
		Allocation:  Allocation(holdings),
	}
}
