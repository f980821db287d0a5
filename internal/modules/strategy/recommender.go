// Package strategy maps a risk score to one of three canned strategy
// archetypes.
//
// The aggressive tier starts at 0.7 while risk.LevelFor reports "high" from
// 0.6, so scores in [0.6, 0.7) are high risk with a balanced strategy. Both
// thresholds are relied on by consumers and are kept as they are.
package strategy

import (
	"math"
	"time"

	"github.com/aristath/finsight/internal/domain"
)

// Tier thresholds
const (
	ConservativeBelow = 0.3
	BalancedBelow     = 0.7

	// Midpoint is the score at which suitability peaks
	Midpoint = 0.5
)

type archetype struct {
	kind           domain.Archetype
	expectedReturn float64
	riskLevel      domain.RiskLevel
	advice         []domain.Advice
}

var (
	conservative = archetype{
		kind:           domain.ArchetypeConservative,
		expectedReturn: 0.05,
		riskLevel:      domain.RiskLow,
		advice: []domain.Advice{
			domain.AdvicePreserveCapital,
			domain.AdviceFixedIncomeHeavy,
			domain.AdviceEquityLight,
			domain.AdviceHighLiquidity,
		},
	}
	balanced = archetype{
		kind:           domain.ArchetypeBalanced,
		expectedReturn: 0.08,
		riskLevel:      domain.RiskMedium,
		advice: []domain.Advice{
			domain.AdviceBalanceRiskReturn,
			domain.AdviceEvenAllocation,
			domain.AdviceEquityModerate,
			domain.AdviceModerateLiquidity,
		},
	}
	aggressive = archetype{
		kind:           domain.ArchetypeAggressive,
		expectedReturn: 0.12,
		riskLevel:      domain.RiskHigh,
		advice: []domain.Advice{
			domain.AdviceSeekHigherReturn,
			domain.AdviceEquityHeavy,
			domain.AdviceAlternatives,
			domain.AdviceNecessaryLiquidity,
		},
	}
)

// Recommend selects the archetype for score: below 0.3 conservative, below
// 0.7 balanced, otherwise aggressive.
func Recommend(score float64, at time.Time) domain.InvestmentStrategy {
	a := aggressive
	switch {
	case score < ConservativeBelow:
		a = conservative
	case score < BalancedBelow:
		a = balanced
	}

	advice := make([]domain.Advice, len(a.advice))
	copy(advice, a.advice)

	return domain.InvestmentStrategy{
		Type:           a.kind,
		Advice:         advice,
		Suitability:    Suitability(score),
		ExpectedReturn: a.expectedReturn,
		RiskLevel:      a.riskLevel,
		CreatedAt:      at,
	}
}

// Suitability returns 1 - |score - 0.5|. It is deliberately not clamped and
// goes negative for scores outside [-0.5, 1.5].
func Suitability(score float64) float64 {
	return 1.0 - math.Abs(score-Midpoint)
}
