package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryStock, ParseCategory("股票"))
	assert.Equal(t, CategoryFund, ParseCategory(" Fund "))
	assert.Equal(t, CategoryBond, ParseCategory("债券"))
	assert.Equal(t, CategoryCash, ParseCategory("CASH"))
	assert.Equal(t, Category("REIT"), ParseCategory("REIT"))
}

func TestParseRiskTolerance(t *testing.T) {
	for input, want := range map[string]RiskTolerance{
		"保守":         ToleranceConservative,
		"稳健":         ToleranceBalanced,
		"激进":         ToleranceAggressive,
		"Aggressive": ToleranceAggressive,
	} {
		got, err := ParseRiskTolerance(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseRiskTolerance("yolo")
	assert.Error(t, err)
}

func TestHolding_Values(t *testing.T) {
	h := Holding{Name: "Moutai", Quantity: 100, CostPrice: 10, CurrentPrice: 20}

	assert.Equal(t, 2000.0, h.MarketValue())
	assert.Equal(t, 1000.0, h.CostValue())
	assert.Equal(t, 1000.0, h.Profit())
	assert.Equal(t, 1.0, h.ProfitRate())

	h.CostPrice = 0
	assert.Equal(t, 0.0, h.ProfitRate())
}

func TestHolding_Validate(t *testing.T) {
	assert.NoError(t, Holding{Quantity: 0, CostPrice: 0, CurrentPrice: 0}.Validate())
	assert.Error(t, Holding{Quantity: -1}.Validate())
	assert.Error(t, Holding{CostPrice: -0.5}.Validate())
	assert.Error(t, Holding{CurrentPrice: math.NaN()}.Validate())
	assert.Error(t, Holding{CurrentPrice: math.Inf(1)}.Validate())
	assert.Error(t, Holding{Quantity: math.MaxInt64, CurrentPrice: math.MaxFloat64 / 2}.Validate())
	assert.Error(t, Holding{Quantity: math.MaxInt64, CostPrice: math.MaxFloat64 / 2}.Validate())
}

func TestLabels(t *testing.T) {
	zh := NewLabels("zh")
	en := NewLabels("en")

	assert.Equal(t, "股票占比过高", zh.Factor(RiskFactor{Kind: FactorDominance, Category: CategoryStock, Share: 0.8}))
	assert.Equal(t, "Stock is over-weighted (80.0%)", en.Factor(RiskFactor{Kind: FactorDominance, Category: CategoryStock, Share: 0.8}))
	assert.Equal(t, "茅台涨幅过大", zh.Factor(RiskFactor{Kind: FactorGain, Holding: "茅台"}))
	assert.Equal(t, "稳健", zh.Tolerance(ToleranceBalanced))
	assert.Equal(t, "REIT", en.Category("REIT"))
	assert.Equal(t, "平衡型", Labels{}.Archetype(ArchetypeBalanced))
	assert.Equal(t, "目标 '买房' 已过期，建议重新设定截止日期", zh.Adjustment(GoalAdjustment{Kind: AdjustExpired, Goal: "买房"}))
	assert.Equal(t, "乐观", zh.Sentiment(SentimentOptimistic))
	assert.Equal(t, "N/A", en.Sentiment(SentimentUnavailable))
	assert.Equal(t, "MACD golden cross: buy signal", en.Signal(SignalGoldenCross))
	assert.Contains(t, zh.Trend(TrendSideways), "震荡整理")
}
