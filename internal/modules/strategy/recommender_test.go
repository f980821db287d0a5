package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/risk"
)

var now = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func TestRecommend_Tiers(t *testing.T) {
	testCases := []struct {
		score    float64
		expected domain.Archetype
		ret      float64
		level    domain.RiskLevel
	}{
		{0, domain.ArchetypeConservative, 0.05, domain.RiskLow},
		{0.29, domain.ArchetypeConservative, 0.05, domain.RiskLow},
		{0.3, domain.ArchetypeBalanced, 0.08, domain.RiskMedium},
		{0.69, domain.ArchetypeBalanced, 0.08, domain.RiskMedium},
		{0.7, domain.ArchetypeAggressive, 0.12, domain.RiskHigh},
		{1.3, domain.ArchetypeAggressive, 0.12, domain.RiskHigh},
	}

	for _, tc := range testCases {
		s := Recommend(tc.score, now)
		assert.Equal(t, tc.expected, s.Type, "score %v", tc.score)
		assert.Equal(t, tc.ret, s.ExpectedReturn, "score %v", tc.score)
		assert.Equal(t, tc.level, s.RiskLevel, "score %v", tc.score)
		assert.Len(t, s.Advice, 4)
		assert.Equal(t, now, s.CreatedAt)
	}
}

func TestRecommend_AdviceIsNotShared(t *testing.T) {
	first := Recommend(0.1, now)
	first.Advice[0] = "mutated"

	assert.Equal(t, domain.AdvicePreserveCapital, Recommend(0.1, now).Advice[0])
}

func TestSuitability(t *testing.T) {
	assert.Equal(t, 1.0, Recommend(0.5, now).Suitability)
	assert.Equal(t, 0.5, Recommend(0.0, now).Suitability)
	assert.Equal(t, 0.5, Recommend(1.0, now).Suitability)
}

func TestSuitability_NotClamped(t *testing.T) {
	assert.InDelta(t, -0.3, Suitability(1.8), 1e-12)
	assert.InDelta(t, -0.5, Suitability(-1.0), 1e-12)
}

func TestLevelAndTierMismatchPreserved(t *testing.T) {
	score := 0.65

	assert.Equal(t, domain.RiskHigh, risk.LevelFor(score))
	assert.Equal(t, domain.ArchetypeBalanced, Recommend(score, now).Type)
}

func TestRecommend_Idempotent(t *testing.T) {
	assert.Equal(t, Recommend(0.42, now), Recommend(0.42, now))
}

func TestDescribe(t *testing.T) {
	view := Describe(Recommend(0.1, now), domain.NewLabels("zh"))

	assert.Equal(t, "保守型", view.Name)
	assert.Equal(t, "低风险", view.RiskLabel)
	assert.Equal(t, []string{"以保本为主要目标", "配置高比例固定收益类资产", "少量配置权益类资产", "保持较高流动性"}, view.Advice)
	assert.InDelta(t, 0.6, view.Suitability, 1e-9)
}
