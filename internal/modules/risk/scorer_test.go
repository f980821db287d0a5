package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/finsight/internal/domain"
)

var assessedAt = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func holding(name string, category domain.Category, quantity int64, cost, current float64) domain.Holding {
	return domain.Holding{Name: name, Symbol: name, Category: category, Quantity: quantity, CostPrice: cost, CurrentPrice: current}
}

func kinds(factors []domain.RiskFactor) []domain.FactorKind {
	out := make([]domain.FactorKind, len(factors))
	for i, f := range factors {
		out[i] = f.Kind
	}
	return out
}

func TestWeightedScore(t *testing.T) {
	assert.Equal(t, 0.0, WeightedScore(nil))
	assert.Equal(t, 0.0, WeightedScore([]domain.Holding{holding("a", domain.CategoryStock, 10, 1, 0)}))

	single := []domain.Holding{holding("a", domain.CategoryStock, 100, 10, 20)}
	assert.InDelta(t, 0.8, WeightedScore(single), 1e-12)

	mixed := []domain.Holding{
		holding("a", domain.CategoryStock, 1, 1, 50),
		holding("b", domain.CategoryCash, 1, 1, 50),
	}
	assert.InDelta(t, 0.45, WeightedScore(mixed), 1e-12)

	unknown := []domain.Holding{holding("a", "REIT", 1, 1, 10)}
	assert.InDelta(t, DefaultCoefficient, WeightedScore(unknown), 1e-12)
}

func TestScores_OverflowingPortfolioIsZero(t *testing.T) {
	holdings := []domain.Holding{
		holding("a", domain.CategoryStock, 1, 1, math.MaxFloat64*0.6),
		holding("b", domain.CategoryBond, 1, 1, math.MaxFloat64*0.6),
	}
	require.NoError(t, holdings[0].Validate())

	assert.Equal(t, 0.0, WeightedScore(holdings))
	assert.Equal(t, 0.0, VolatilityScore(holdings, domain.ToleranceBalanced))
	assert.Equal(t, domain.OutcomeDegraded, Assess(holdings, assessedAt).Outcome)
}

func TestWeightedScore_BoundedForKnownCategories(t *testing.T) {
	categories := []domain.Category{domain.CategoryStock, domain.CategoryFund, domain.CategoryBond, domain.CategoryCash}
	for i := 0; i < 50; i++ {
		var holdings []domain.Holding
		for j, c := range categories {
			holdings = append(holdings, holding(string(c), c, int64((i*7+j*3)%11), 1, float64((i+j)%5)+0.5))
		}
		score := WeightedScore(holdings)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, domain.RiskLow, LevelFor(0))
	assert.Equal(t, domain.RiskLow, LevelFor(0.299))
	assert.Equal(t, domain.RiskMedium, LevelFor(0.3))
	assert.Equal(t, domain.RiskMedium, LevelFor(0.599))
	assert.Equal(t, domain.RiskHigh, LevelFor(0.6))
	assert.Equal(t, domain.RiskHigh, LevelFor(0.65))
	assert.Equal(t, domain.RiskHigh, LevelFor(1.3))
}

func TestAssess_EmptyPortfolio(t *testing.T) {
	for _, holdings := range [][]domain.Holding{nil, {holding("a", domain.CategoryStock, 0, 10, 10)}} {
		a := Assess(holdings, assessedAt)

		assert.Equal(t, domain.OutcomeEmpty, a.Outcome)
		assert.Equal(t, 0.0, a.Score)
		assert.Equal(t, domain.RiskLow, a.Level)
		assert.Equal(t, []domain.RiskFactor{{Kind: domain.FactorEmpty}}, a.Factors)
		assert.Equal(t, []domain.Suggestion{domain.SuggestAddAssets}, a.Suggestions)
		assert.Equal(t, assessedAt, a.AssessedAt)
	}
}

func TestAssess_SingleStockGain(t *testing.T) {
	a := Assess([]domain.Holding{holding("Moutai", domain.CategoryStock, 100, 10, 20)}, assessedAt)

	assert.Equal(t, domain.OutcomeAssessed, a.Outcome)
	// concentration 0.3 + dominance 0.2 + gain 0.1
	assert.InDelta(t, 0.6, a.Score, 1e-12)
	assert.Equal(t, domain.RiskHigh, a.Level)
	assert.Equal(t, []domain.FactorKind{domain.FactorConcentration, domain.FactorDominance, domain.FactorGain}, kinds(a.Factors))
	assert.Equal(t, domain.CategoryStock, a.Factors[1].Category)
	assert.Equal(t, 1.0, a.Factors[1].Share)
	assert.Equal(t, "Moutai", a.Factors[2].Holding)
	assert.Equal(t, 2.0, a.Factors[2].Ratio)
	assert.Equal(t, []domain.Suggestion{domain.SuggestDiversify, domain.SuggestRebalance, domain.SuggestTakeProfit}, a.Suggestions)
}

func TestAssess_DiversifiedNoFactors(t *testing.T) {
	holdings := []domain.Holding{
		holding("s", domain.CategoryStock, 10, 10, 10),
		holding("f", domain.CategoryFund, 10, 10, 10),
		holding("b", domain.CategoryBond, 10, 10, 10),
	}
	a := Assess(holdings, assessedAt)

	assert.Equal(t, 0.0, a.Score)
	assert.Equal(t, domain.RiskLow, a.Level)
	assert.Empty(t, a.Factors)
	assert.Empty(t, a.Suggestions)
}

func TestAssess_ZeroCostSkippedByVolatilityRule(t *testing.T) {
	holdings := []domain.Holding{
		holding("gift", domain.CategoryStock, 10, 0, 10),
		holding("f", domain.CategoryFund, 10, 10, 10),
		holding("b", domain.CategoryBond, 10, 10, 10),
	}

	var a domain.RiskAssessment
	require.NotPanics(t, func() { a = Assess(holdings, assessedAt) })

	assert.Equal(t, domain.OutcomeAssessed, a.Outcome)
	assert.Empty(t, a.Factors)
	assert.Equal(t, 0.0, a.Score)
}

func TestAssess_LossAndGainSuggestionsOncePerKind(t *testing.T) {
	holdings := []domain.Holding{
		holding("up1", domain.CategoryStock, 1, 10, 16),
		holding("up2", domain.CategoryStock, 1, 10, 30),
		holding("down1", domain.CategoryFund, 1, 10, 7),
		holding("down2", domain.CategoryBond, 1, 10, 5),
		holding("flat", domain.CategoryCash, 1, 10, 10),
	}
	a := Assess(holdings, assessedAt)

	// Stock holds 46/68 of value and trips dominance as well.
	assert.Equal(t, []domain.FactorKind{
		domain.FactorDominance,
		domain.FactorGain, domain.FactorGain,
		domain.FactorLoss, domain.FactorLoss,
	}, kinds(a.Factors))
	assert.InDelta(t, 0.2+0.1+0.1+0.2+0.2, a.Score, 1e-12)
	assert.Equal(t, domain.RiskHigh, a.Level)
	assert.Equal(t, []domain.Suggestion{domain.SuggestRebalance, domain.SuggestTakeProfit, domain.SuggestReviewStopLoss}, a.Suggestions)
}

func TestAssess_RatioBoundariesAreExclusive(t *testing.T) {
	holdings := []domain.Holding{
		holding("exactly-up", domain.CategoryStock, 1, 10, 15),
		holding("exactly-down", domain.CategoryFund, 1, 10, 8),
		holding("b", domain.CategoryBond, 1, 10, 10),
	}
	a := Assess(holdings, assessedAt)

	assert.Empty(t, a.Factors)
}

func TestAssess_DegradedOnMalformedData(t *testing.T) {
	testCases := []struct {
		name    string
		holding domain.Holding
	}{
		{"negative quantity", holding("a", domain.CategoryStock, -5, 10, 10)},
		{"negative price", holding("a", domain.CategoryStock, 5, 10, -1)},
		{"NaN price", holding("a", domain.CategoryStock, 5, math.NaN(), 10)},
		{"infinite price", holding("a", domain.CategoryStock, 5, 10, math.Inf(1))},
		{"overflowing value", holding("a", domain.CategoryStock, math.MaxInt64, 10, math.MaxFloat64/2)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := Assess([]domain.Holding{tc.holding}, assessedAt)

			assert.Equal(t, domain.OutcomeDegraded, a.Outcome)
			assert.Equal(t, 0.0, a.Score)
			assert.Equal(t, domain.RiskUnknown, a.Level)
			require.Len(t, a.Factors, 1)
			assert.Equal(t, domain.FactorFailure, a.Factors[0].Kind)
			assert.NotEmpty(t, a.Factors[0].Reason)
			assert.Equal(t, []domain.Suggestion{domain.SuggestCheckData}, a.Suggestions)
		})
	}
}

func TestAssess_Idempotent(t *testing.T) {
	holdings := []domain.Holding{
		holding("a", domain.CategoryStock, 10, 10, 20),
		holding("b", domain.CategoryFund, 10, 10, 5),
	}
	assert.Equal(t, Assess(holdings, assessedAt), Assess(holdings, assessedAt))
	assert.Equal(t, WeightedScore(holdings), WeightedScore(holdings))
}

func TestVolatilityScore(t *testing.T) {
	holdings := []domain.Holding{
		holding("a", domain.CategoryStock, 1, 10, 15), // +50%, weight 0.6
		holding("b", domain.CategoryBond, 1, 20, 10),  // -50%, weight 0.4
	}

	assert.InDelta(t, 0.25, VolatilityScore(holdings, domain.ToleranceConservative), 1e-12)
	assert.InDelta(t, 0.5, VolatilityScore(holdings, domain.ToleranceBalanced), 1e-12)
	assert.InDelta(t, 0.75, VolatilityScore(holdings, domain.ToleranceAggressive), 1e-12)
	assert.InDelta(t, 0.5, VolatilityScore(holdings, "unknown"), 1e-12)

	withGift := append(holdings, holding("gift", domain.CategoryCash, 1, 0, 0))
	assert.InDelta(t, 0.5, VolatilityScore(withGift, domain.ToleranceBalanced), 1e-12)
	assert.Equal(t, 0.0, VolatilityScore(nil, domain.ToleranceBalanced))
}

func TestDescribe(t *testing.T) {
	a := Assess([]domain.Holding{holding("茅台", domain.CategoryStock, 100, 10, 20)}, assessedAt)

	zh := Describe(a, domain.NewLabels("zh"))
	assert.Equal(t, "高", zh.LevelLabel)
	require.Len(t, zh.Factors, 3)
	assert.Equal(t, "资产类别过于集中", zh.Factors[0].Message)
	assert.Equal(t, "股票占比过高", zh.Factors[1].Message)
	assert.Equal(t, "茅台涨幅过大", zh.Factors[2].Message)
	assert.Equal(t, domain.SuggestDiversify, zh.Suggestions[0].Kind)

	en := Describe(Assess(nil, assessedAt), domain.NewLabels("en"))
	assert.Equal(t, domain.OutcomeEmpty, en.Outcome)
	assert.Equal(t, "Empty portfolio", en.Factors[0].Message)
	assert.Equal(t, "Add assets to begin investing", en.Suggestions[0].Message)
}
