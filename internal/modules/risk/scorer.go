// Package risk scores portfolios: a weighted category score, a rule-based
// assessment with tagged factors and suggestions, and a volatility score
// scaled by the investor's risk tolerance.
package risk

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/valuation"
)

// Per-category risk coefficients used by WeightedScore
var categoryCoefficients = map[domain.Category]float64{
	domain.CategoryStock: 0.8,
	domain.CategoryFund:  0.6,
	domain.CategoryBond:  0.3,
	domain.CategoryCash:  0.1,
}

// DefaultCoefficient applies to categories outside the known set
const DefaultCoefficient = 0.5

// Assessment rule constants
const (
	MinCategories       = 3
	ConcentrationWeight = 0.3
	DominanceShare      = 0.5
	DominanceWeight     = 0.2
	GainRatio           = 1.5
	GainWeight          = 0.1
	LossRatio           = 0.8
	LossWeight          = 0.2

	LowThreshold    = 0.3
	MediumThreshold = 0.6
)

// Coefficient returns the risk coefficient of a category
func Coefficient(c domain.Category) float64 {
	if v, ok := categoryCoefficients[c]; ok {
		return v
	}
	return DefaultCoefficient
}

// WeightedScore returns Σ (market value share × category coefficient).
// Empty, worthless or overflowing portfolios score 0.
func WeightedScore(holdings []domain.Holding) float64 {
	total := valuation.TotalValue(holdings)
	if total == 0 || math.IsInf(total, 0) {
		return 0
	}

	score := 0.0
	for _, h := range holdings {
		score += h.MarketValue() / total * Coefficient(h.Category)
	}
	return score
}

// LevelFor maps a score to a risk level: <0.3 low, <0.6 medium, else high
func LevelFor(score float64) domain.RiskLevel {
	switch {
	case score < LowThreshold:
		return domain.RiskLow
	case score < MediumThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

// Suggestion table, in the order suggestions are emitted
var suggestionOrder = []struct {
	kind       domain.FactorKind
	suggestion domain.Suggestion
}{
	{domain.FactorConcentration, domain.SuggestDiversify},
	{domain.FactorDominance, domain.SuggestRebalance},
	{domain.FactorGain, domain.SuggestTakeProfit},
	{domain.FactorLoss, domain.SuggestReviewStopLoss},
}

// Assess runs the assessment rules over holdings. It never fails: empty
// portfolios and malformed holdings produce the empty and degraded outcomes.
func Assess(holdings []domain.Holding, at time.Time) domain.RiskAssessment {
	for _, h := range holdings {
		if err := h.Validate(); err != nil {
			return degraded(err, at)
		}
	}

	total := valuation.TotalValue(holdings)
	if math.IsInf(total, 0) {
		return degraded(errors.New("portfolio value overflows"), at)
	}
	if total == 0 {
		return domain.RiskAssessment{
			Outcome:     domain.OutcomeEmpty,
			Score:       0,
			Level:       domain.RiskLow,
			Factors:     []domain.RiskFactor{{Kind: domain.FactorEmpty}},
			Suggestions: []domain.Suggestion{domain.SuggestAddAssets},
			AssessedAt:  at,
		}
	}

	score := 0.0
	var factors []domain.RiskFactor

	byCategory := valuation.CategoryValues(holdings)

	if len(byCategory) < MinCategories {
		score += ConcentrationWeight
		factors = append(factors, domain.RiskFactor{
			Kind:          domain.FactorConcentration,
			CategoryCount: len(byCategory),
		})
	}

	// Map iteration order is random; report dominant categories by name.
	categories := make([]domain.Category, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	for _, c := range categories {
		share := byCategory[c] / total
		if share > DominanceShare {
			score += DominanceWeight
			factors = append(factors, domain.RiskFactor{
				Kind:     domain.FactorDominance,
				Category: c,
				Share:    share,
			})
		}
	}

	for _, h := range holdings {
		if h.CostPrice == 0 {
			continue
		}
		ratio := h.CurrentPrice / h.CostPrice
		if ratio > GainRatio {
			score += GainWeight
			factors = append(factors, domain.RiskFactor{Kind: domain.FactorGain, Holding: h.Name, Ratio: ratio})
		} else if ratio < LossRatio {
			score += LossWeight
			factors = append(factors, domain.RiskFactor{Kind: domain.FactorLoss, Holding: h.Name, Ratio: ratio})
		}
	}

	return domain.RiskAssessment{
		Outcome:     domain.OutcomeAssessed,
		Score:       score,
		Level:       LevelFor(score),
		Factors:     factors,
		Suggestions: suggestionsFor(factors),
		AssessedAt:  at,
	}
}

func suggestionsFor(factors []domain.RiskFactor) []domain.Suggestion {
	fired := make(map[domain.FactorKind]bool, len(factors))
	for _, f := range factors {
		fired[f.Kind] = true
	}

	suggestions := []domain.Suggestion{}
	for _, entry := range suggestionOrder {
		if fired[entry.kind] {
			suggestions = append(suggestions, entry.suggestion)
		}
	}
	return suggestions
}

func degraded(err error, at time.Time) domain.RiskAssessment {
	return domain.RiskAssessment{
		Outcome:     domain.OutcomeDegraded,
		Score:       0,
		Level:       domain.RiskUnknown,
		Factors:     []domain.RiskFactor{{Kind: domain.FactorFailure, Reason: err.Error()}},
		Suggestions: []domain.Suggestion{domain.SuggestCheckData},
		AssessedAt:  at,
	}
}

// Tolerance multipliers for VolatilityScore
var toleranceCoefficients = map[domain.RiskTolerance]float64{
	domain.ToleranceConservative: 0.5,
	domain.ToleranceBalanced:     1.0,
	domain.ToleranceAggressive:   1.5,
}

// VolatilityScore weights each holding's absolute price move since purchase
// (|current - cost| / cost) by its share of market value, then scales the sum
// by the tolerance multiplier (0.5, 1.0, 1.5; unknown tolerances use 1.0).
// Holdings with a zero cost price contribute nothing; an overflowing
// portfolio value scores 0.
func VolatilityScore(holdings []domain.Holding, tolerance domain.RiskTolerance) float64 {
	total := valuation.TotalValue(holdings)
	if total == 0 || math.IsInf(total, 0) {
		return 0
	}

	coefficient, ok := toleranceCoefficients[tolerance]
	if !ok {
		coefficient = 1.0
	}

	weighted := 0.0
	for _, h := range holdings {
		if h.CostPrice == 0 {
			continue
		}
		move := h.CurrentPrice - h.CostPrice
		if move < 0 {
			move = -move
		}
		weighted += h.MarketValue() / total * move / h.CostPrice
	}
	return weighted * coefficient
}
