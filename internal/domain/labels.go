package domain

import "fmt"

// Locale selects the display language of Labels
type Locale string

// Supported locales
const (
	LocaleZH Locale = "zh"
	LocaleEN Locale = "en"
)

// Labels renders enumerations as display text. The zero value renders Chinese.
type Labels struct {
	locale Locale
}

// NewLabels returns a Labels for the given locale code, falling back to zh
func NewLabels(locale string) Labels {
	if Locale(locale) == LocaleEN {
		return Labels{locale: LocaleEN}
	}
	return Labels{locale: LocaleZH}
}

// Locale returns the active locale
func (l Labels) Locale() Locale {
	if l.locale == "" {
		return LocaleZH
	}
	return l.locale
}

type text struct{ zh, en string }

func (l Labels) pick(t text) string {
	if l.Locale() == LocaleEN {
		return t.en
	}
	return t.zh
}

var categoryText = map[Category]text{
	CategoryStock: {"股票", "Stock"},
	CategoryFund:  {"基金", "Fund"},
	CategoryBond:  {"债券", "Bond"},
	CategoryCash:  {"现金", "Cash"},
}

// Category returns the display name of c; unknown categories render as-is
func (l Labels) Category(c Category) string {
	if t, ok := categoryText[c]; ok {
		return l.pick(t)
	}
	return string(c)
}

var toleranceText = map[RiskTolerance]text{
	ToleranceConservative: {"保守", "Conservative"},
	ToleranceBalanced:     {"稳健", "Balanced"},
	ToleranceAggressive:   {"激进", "Aggressive"},
}

// Tolerance returns the display name of t
func (l Labels) Tolerance(t RiskTolerance) string {
	if v, ok := toleranceText[t]; ok {
		return l.pick(v)
	}
	return string(t)
}

var levelText = map[RiskLevel]text{
	RiskLow:     {"低", "Low"},
	RiskMedium:  {"中", "Medium"},
	RiskHigh:    {"高", "High"},
	RiskUnknown: {"未知", "Unknown"},
}

// Level returns the display name of a risk level
func (l Labels) Level(level RiskLevel) string {
	if v, ok := levelText[level]; ok {
		return l.pick(v)
	}
	return string(level)
}

var strategyRiskText = map[RiskLevel]text{
	RiskLow:    {"低风险", "Low risk"},
	RiskMedium: {"中风险", "Medium risk"},
	RiskHigh:   {"高风险", "High risk"},
}

// StrategyRisk returns the risk label shown next to a strategy archetype
func (l Labels) StrategyRisk(level RiskLevel) string {
	if v, ok := strategyRiskText[level]; ok {
		return l.pick(v)
	}
	return l.Level(level)
}

var archetypeText = map[Archetype]text{
	ArchetypeConservative: {"保守型", "Conservative"},
	ArchetypeBalanced:     {"平衡型", "Balanced"},
	ArchetypeAggressive:   {"进取型", "Aggressive"},
}

// Archetype returns the display name of a strategy archetype
func (l Labels) Archetype(a Archetype) string {
	if v, ok := archetypeText[a]; ok {
		return l.pick(v)
	}
	return string(a)
}

var adviceText = map[Advice]text{
	AdvicePreserveCapital:  {"以保本为主要目标", "Make capital preservation the primary goal"},
	AdviceFixedIncomeHeavy: {"配置高比例固定收益类资产", "Hold a high share of fixed-income assets"},
	AdviceEquityLight:      {"少量配置权益类资产", "Keep only a small equity allocation"},
	AdviceHighLiquidity:    {"保持较高流动性", "Maintain high liquidity"},

	AdviceBalanceRiskReturn: {"平衡收益与风险", "Balance return against risk"},
	AdviceEvenAllocation:    {"均衡配置各类资产", "Spread allocation evenly across asset classes"},
	AdviceEquityModerate:    {"适当配置权益类资产", "Hold a moderate equity allocation"},
	AdviceModerateLiquidity: {"保持适度流动性", "Maintain moderate liquidity"},

	AdviceSeekHigherReturn:   {"追求较高收益", "Pursue higher returns"},
	AdviceEquityHeavy:        {"重点配置权益类资产", "Concentrate on equity assets"},
	AdviceAlternatives:       {"适当配置另类资产", "Add some alternative assets"},
	AdviceNecessaryLiquidity: {"保持必要流动性", "Keep the liquidity you need"},
}

// Advice returns the display text of a strategy advice point
func (l Labels) Advice(a Advice) string {
	if v, ok := adviceText[a]; ok {
		return l.pick(v)
	}
	return string(a)
}

// Factor renders a risk factor, interpolating its structured data
func (l Labels) Factor(f RiskFactor) string {
	switch f.Kind {
	case FactorEmpty:
		return l.pick(text{"投资组合为空", "Empty portfolio"})
	case FactorConcentration:
		return l.pick(text{"资产类别过于集中", "Asset categories too concentrated"})
	case FactorDominance:
		return l.pick(text{
			fmt.Sprintf("%s占比过高", l.Category(f.Category)),
			fmt.Sprintf("%s is over-weighted (%.1f%%)", l.Category(f.Category), f.Share*100),
		})
	case FactorGain:
		return l.pick(text{
			fmt.Sprintf("%s涨幅过大", f.Holding),
			fmt.Sprintf("%s gained sharply", f.Holding),
		})
	case FactorLoss:
		return l.pick(text{
			fmt.Sprintf("%s跌幅较大", f.Holding),
			fmt.Sprintf("%s dropped significantly", f.Holding),
		})
	case FactorFailure:
		return l.pick(text{"风险评估过程出错", "Risk assessment process failed"})
	}
	return string(f.Kind)
}

var suggestionText = map[Suggestion]text{
	SuggestAddAssets:      {"添加资产以开始投资", "Add assets to begin investing"},
	SuggestDiversify:      {"建议增加资产类别，实现多元化投资", "Add asset categories to diversify"},
	SuggestRebalance:      {"建议调整资产配置，降低单一资产占比", "Rebalance to reduce the weight of any single category"},
	SuggestTakeProfit:     {"建议考虑部分获利了结", "Consider taking partial profits"},
	SuggestReviewStopLoss: {"建议评估是否需要止损", "Evaluate whether a stop-loss is needed"},
	SuggestCheckData:      {"请检查投资组合数据是否正确", "Please check the portfolio data"},
}

// Suggestion returns the display text of an assessment suggestion
func (l Labels) Suggestion(s Suggestion) string {
	if v, ok := suggestionText[s]; ok {
		return l.pick(v)
	}
	return string(s)
}

// Adjustment renders a goal adjustment suggestion
func (l Labels) Adjustment(a GoalAdjustment) string {
	switch a.Kind {
	case AdjustExpired:
		return l.pick(text{
			fmt.Sprintf("目标 '%s' 已过期，建议重新设定截止日期", a.Goal),
			fmt.Sprintf("Goal '%s' has expired; consider setting a new deadline", a.Goal),
		})
	case AdjustBurdenHigh:
		return l.pick(text{
			fmt.Sprintf("目标 '%s' 每月储蓄金额较高，建议考虑延长完成时间或降低目标金额", a.Goal),
			fmt.Sprintf("Goal '%s' needs a high monthly saving; consider extending the deadline or lowering the target", a.Goal),
		})
	case AdjustRebalanceAggressive:
		return l.pick(text{"激进型目标占比过高，建议增加稳健型目标以平衡风险", "Aggressive goals dominate; add balanced goals to even out risk"})
	case AdjustRaiseYield:
		return l.pick(text{"保守型目标占比过高，可以考虑适当增加收益目标", "Conservative goals dominate; consider some higher-yield goals"})
	}
	return string(a.Kind)
}

var sentimentText = map[Sentiment]text{
	SentimentOptimistic:  {"乐观", "Optimistic"},
	SentimentNeutral:     {"中性", "Neutral"},
	SentimentPessimistic: {"悲观", "Pessimistic"},
	SentimentUnavailable: {"N/A", "N/A"},
}

// Sentiment returns the display name of a market sentiment
func (l Labels) Sentiment(s Sentiment) string {
	if v, ok := sentimentText[s]; ok {
		return l.pick(v)
	}
	return string(s)
}

var trendText = map[Trend]text{
	TrendBullish:  {"多头排列：短期、中期、长期均线呈多头排列，显示强势上涨趋势", "Bullish alignment: short, medium and long averages stack upward"},
	TrendBearish:  {"空头排列：短期、中期、长期均线呈空头排列，显示下跌趋势", "Bearish alignment: short, medium and long averages stack downward"},
	TrendSideways: {"震荡整理：均线系统显示市场处于震荡整理阶段", "Range-bound: the averages show consolidation"},
}

// Trend returns the description of a moving-average trend
func (l Labels) Trend(t Trend) string {
	if v, ok := trendText[t]; ok {
		return l.pick(v)
	}
	return string(t)
}

var signalText = map[TechnicalSignal]text{
	SignalGoldenCross: {"MACD金叉：显示买入信号", "MACD golden cross: buy signal"},
	SignalDeathCross:  {"MACD死叉：显示卖出信号", "MACD death cross: sell signal"},
	SignalOverbought:  {"RSI超买：显示市场可能过热，注意回调风险", "RSI overbought: watch for a pullback"},
	SignalOversold:    {"RSI超卖：显示市场可能超跌，存在反弹机会", "RSI oversold: a rebound is possible"},
}

// Signal returns the description of a technical signal
func (l Labels) Signal(s TechnicalSignal) string {
	if v, ok := signalText[s]; ok {
		return l.pick(v)
	}
	return string(s)
}

var projectionAdviceText = map[RiskTolerance][]text{
	ToleranceConservative: {
		{"建议选择低风险投资品种", "Choose low-risk instruments"},
		{"可以考虑货币基金、国债等", "Consider money-market funds and government bonds"},
		{"保持稳定的投资节奏", "Keep a steady investment rhythm"},
	},
	ToleranceBalanced: {
		{"建议选择中等风险投资品种", "Choose medium-risk instruments"},
		{"可以考虑债券基金、蓝筹股等", "Consider bond funds and blue-chip stocks"},
		{"适当配置不同资产类别", "Spread across asset classes"},
	},
	ToleranceAggressive: {
		{"建议选择高风险高收益品种", "Choose high-risk, high-return instruments"},
		{"可以考虑股票、期货等", "Consider equities and futures"},
		{"注意控制风险，设置止损", "Control risk and set stop-losses"},
	},
}

// ProjectionAdvice returns the investment-plan advice for a tolerance
func (l Labels) ProjectionAdvice(t RiskTolerance) []string {
	items := projectionAdviceText[t]
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, l.pick(item))
	}
	return out
}

// ChatGreeting is the first assistant message of a new advisor session
func (l Labels) ChatGreeting() string {
	return l.pick(text{
		"👋 您好！我是您的投资理财助手。我可以为您提供专业的投资建议和理财规划。请问您有什么投资方面的问题需要咨询？",
		"👋 Hello! I am your investment assistant. I can offer investment advice and financial planning. What would you like to ask?",
	})
}
