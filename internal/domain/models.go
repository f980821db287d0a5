// Package domain holds the finsight data model shared by the calculation
// modules, the repositories and the HTTP layer. Display strings for the
// enumerations live in labels.go.
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Category classifies a holding. The set is open: unknown values are kept
// verbatim and only ever used as a grouping key.
type Category string

// Known categories
const (
	CategoryStock Category = "stock"
	CategoryFund  Category = "fund"
	CategoryBond  Category = "bond"
	CategoryCash  Category = "cash"
)

var categoryAliases = map[string]Category{
	"stock":  CategoryStock,
	"stocks": CategoryStock,
	"equity": CategoryStock,
	"股票":     CategoryStock,
	"fund":   CategoryFund,
	"funds":  CategoryFund,
	"基金":     CategoryFund,
	"bond":   CategoryBond,
	"bonds":  CategoryBond,
	"债券":     CategoryBond,
	"cash":   CategoryCash,
	"现金":     CategoryCash,
}

// ParseCategory normalises English and Chinese category names to a known
// Category. Anything else is returned trimmed but otherwise unchanged.
func ParseCategory(s string) Category {
	trimmed := strings.TrimSpace(s)
	if c, ok := categoryAliases[strings.ToLower(trimmed)]; ok {
		return c
	}
	return Category(trimmed)
}

// RiskTolerance is the investor profile attached to portfolios and goals
type RiskTolerance string

// Risk tolerances
const (
	ToleranceConservative RiskTolerance = "conservative"
	ToleranceBalanced     RiskTolerance = "balanced"
	ToleranceAggressive   RiskTolerance = "aggressive"
)

// Tolerances lists every tolerance in display order
var Tolerances = []RiskTolerance{ToleranceConservative, ToleranceBalanced, ToleranceAggressive}

var toleranceAliases = map[string]RiskTolerance{
	"conservative": ToleranceConservative,
	"保守":           ToleranceConservative,
	"balanced":     ToleranceBalanced,
	"moderate":     ToleranceBalanced,
	"稳健":           ToleranceBalanced,
	"aggressive":   ToleranceAggressive,
	"激进":           ToleranceAggressive,
}

// ParseRiskTolerance accepts English or Chinese labels
func ParseRiskTolerance(s string) (RiskTolerance, error) {
	if t, ok := toleranceAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown risk tolerance %q", s)
}

// Valid reports whether t is one of the three tolerances
func (t RiskTolerance) Valid() bool {
	switch t {
	case ToleranceConservative, ToleranceBalanced, ToleranceAggressive:
		return true
	}
	return false
}

// RiskLevel is the discrete bucket a risk score falls into
type RiskLevel string

// Risk levels
const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskUnknown RiskLevel = "unknown"
)

// User is the owner of portfolios, goals and transactions
type User struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Experience string    `json:"experience"`
	CreatedAt  time.Time `json:"created_at"`
}

// Holding is one line-item position inside a portfolio.
// CostPrice is the acquisition price and is never rewritten by price refreshes.
type Holding struct {
	ID           int64     `json:"id"`
	PortfolioID  int64     `json:"portfolio_id"`
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Category     Category  `json:"category"`
	Quantity     int64     `json:"quantity"`
	CostPrice    float64   `json:"cost_price"`
	CurrentPrice float64   `json:"current_price"`
	PurchaseDate time.Time `json:"purchase_date"`
	LastUpdated  time.Time `json:"last_updated"`
}

// MarketValue returns quantity × current price
func (h Holding) MarketValue() float64 {
	return float64(h.Quantity) * h.CurrentPrice
}

// CostValue returns quantity × cost price
func (h Holding) CostValue() float64 {
	return float64(h.Quantity) * h.CostPrice
}

// Profit returns market value minus cost value
func (h Holding) Profit() float64 {
	return h.MarketValue() - h.CostValue()
}

// ProfitRate returns profit relative to cost value, 0 when nothing was paid
func (h Holding) ProfitRate() float64 {
	cost := h.CostValue()
	if cost == 0 {
		return 0
	}
	return h.Profit() / cost
}

// Validate checks the holding invariants: non-negative quantity, finite
// non-negative prices and a finite market and cost value.
func (h Holding) Validate() error {
	if h.Quantity < 0 {
		return fmt.Errorf("holding %q: negative quantity %d", h.Name, h.Quantity)
	}
	if !finiteNonNegative(h.CostPrice) {
		return fmt.Errorf("holding %q: invalid cost price %v", h.Name, h.CostPrice)
	}
	if !finiteNonNegative(h.CurrentPrice) {
		return fmt.Errorf("holding %q: invalid current price %v", h.Name, h.CurrentPrice)
	}
	if math.IsInf(h.MarketValue(), 0) || math.IsInf(h.CostValue(), 0) {
		return fmt.Errorf("holding %q: value overflows", h.Name)
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Portfolio is a named collection of holdings owned by one user.
// TotalValue, TotalProfit, TotalProfitRate and RiskScore are derived from the
// holdings and are only written by the portfolio service.
type Portfolio struct {
	ID              int64         `json:"id"`
	UserID          int64         `json:"user_id"`
	Name            string        `json:"name"`
	RiskTolerance   RiskTolerance `json:"risk_tolerance"`
	InvestmentGoal  string        `json:"investment_goal"`
	InitialCapital  float64       `json:"initial_capital"`
	Holdings        []Holding     `json:"holdings"`
	TotalValue      float64       `json:"total_value"`
	TotalProfit     float64       `json:"total_profit"`
	TotalProfitRate float64       `json:"total_profit_rate"`
	RiskScore       float64       `json:"risk_score"`
	CreatedAt       time.Time     `json:"created_at"`
	Active          bool          `json:"active"`
}

// AssessmentOutcome distinguishes a normal assessment from its degraded forms
type AssessmentOutcome string

// Assessment outcomes
const (
	OutcomeAssessed AssessmentOutcome = "assessed"
	OutcomeEmpty    AssessmentOutcome = "empty"
	OutcomeDegraded AssessmentOutcome = "degraded"
)

// FactorKind tags a triggered risk rule
type FactorKind string

// Risk factor kinds
const (
	FactorEmpty         FactorKind = "empty"
	FactorConcentration FactorKind = "concentration"
	FactorDominance     FactorKind = "dominance"
	FactorGain          FactorKind = "gain"
	FactorLoss          FactorKind = "loss"
	FactorFailure       FactorKind = "failure"
)

// RiskFactor records one rule that fired, with the data that made it fire.
// Which fields are populated depends on Kind.
type RiskFactor struct {
	Kind          FactorKind `json:"kind"`
	Category      Category   `json:"category,omitempty"`       // dominance
	Share         float64    `json:"share,omitempty"`          // dominance
	CategoryCount int        `json:"category_count,omitempty"` // concentration
	Holding       string     `json:"holding,omitempty"`        // gain, loss
	Ratio         float64    `json:"ratio,omitempty"`          // gain, loss: current/cost
	Reason        string     `json:"reason,omitempty"`         // failure
}

// Suggestion is a fixed piece of advice attached to an assessment
type Suggestion string

// Suggestions
const (
	SuggestAddAssets      Suggestion = "add_assets"
	SuggestDiversify      Suggestion = "diversify"
	SuggestRebalance      Suggestion = "rebalance"
	SuggestTakeProfit     Suggestion = "take_profit"
	SuggestReviewStopLoss Suggestion = "review_stop_loss"
	SuggestCheckData      Suggestion = "check_data"
)

// RiskAssessment is an immutable snapshot produced on every request
type RiskAssessment struct {
	Outcome     AssessmentOutcome `json:"outcome"`
	Score       float64           `json:"score"`
	Level       RiskLevel         `json:"level"`
	Factors     []RiskFactor      `json:"factors"`
	Suggestions []Suggestion      `json:"suggestions"`
	AssessedAt  time.Time         `json:"assessed_at"`
}

// Archetype is one of the three canned strategy profiles
type Archetype string

// Archetypes
const (
	ArchetypeConservative Archetype = "conservative"
	ArchetypeBalanced     Archetype = "balanced"
	ArchetypeAggressive   Archetype = "aggressive"
)

// Advice is a fixed strategy advice point
type Advice string

// Advice points, four per archetype
const (
	AdvicePreserveCapital  Advice = "preserve_capital"
	AdviceFixedIncomeHeavy Advice = "fixed_income_heavy"
	AdviceEquityLight      Advice = "equity_light"
	AdviceHighLiquidity    Advice = "high_liquidity"

	AdviceBalanceRiskReturn Advice = "balance_risk_return"
	AdviceEvenAllocation    Advice = "even_allocation"
	AdviceEquityModerate    Advice = "equity_moderate"
	AdviceModerateLiquidity Advice = "moderate_liquidity"

	AdviceSeekHigherReturn   Advice = "seek_higher_return"
	AdviceEquityHeavy        Advice = "equity_heavy"
	AdviceAlternatives       Advice = "alternatives"
	AdviceNecessaryLiquidity Advice = "necessary_liquidity"
)

// InvestmentStrategy is a computed strategy recommendation snapshot
type InvestmentStrategy struct {
	Type           Archetype `json:"type"`
	Advice         []Advice  `json:"advice"`
	Suitability    float64   `json:"suitability"`
	ExpectedReturn float64   `json:"expected_return"`
	RiskLevel      RiskLevel `json:"risk_level"`
	CreatedAt      time.Time `json:"created_at"`
}

// Goal is a savings target tracked over time
type Goal struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	Name          string        `json:"name"`
	TargetAmount  float64       `json:"target_amount"`
	CurrentAmount float64       `json:"current_amount"`
	Deadline      time.Time     `json:"deadline"`
	RiskTolerance RiskTolerance `json:"risk_tolerance"`
	Progress      float64       `json:"progress"`
	CreatedAt     time.Time     `json:"created_at"`
}

// AdjustmentKind tags a goal adjustment suggestion
type AdjustmentKind string

// Adjustment kinds
const (
	AdjustExpired             AdjustmentKind = "expired"
	AdjustBurdenHigh          AdjustmentKind = "burden_high"
	AdjustRebalanceAggressive AdjustmentKind = "rebalance_aggressive"
	AdjustRaiseYield          AdjustmentKind = "raise_yield"
)

// GoalAdjustment is a suggestion produced by the goal tracker. Goal is empty
// for suggestions about the goal set as a whole.
type GoalAdjustment struct {
	Kind AdjustmentKind `json:"kind"`
	Goal string         `json:"goal,omitempty"`
}

// TransactionType is buy or sell
type TransactionType string

// Transaction types
const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Transaction is a recorded buy or sell of a holding
type Transaction struct {
	ID        int64           `json:"id" csv:"id"`
	UserID    int64           `json:"user_id" csv:"user_id"`
	HoldingID int64           `json:"holding_id" csv:"holding_id"`
	Type      TransactionType `json:"type" csv:"type"`
	Quantity  int64           `json:"quantity" csv:"quantity"`
	Price     float64         `json:"price" csv:"price"`
	Amount    float64         `json:"amount" csv:"amount"`
	CreatedAt time.Time       `json:"created_at" csv:"created_at"`
}

// Session identifies the user and portfolio an interaction acts on. It is
// resolved once per request and passed explicitly to services.
type Session struct {
	UserID      int64 `json:"user_id"`
	PortfolioID int64 `json:"portfolio_id"`
}

// HasPortfolio reports whether a portfolio was resolved
func (s Session) HasPortfolio() bool {
	return s.PortfolioID > 0
}

// ProfitAnalysis is a stored investment-plan projection
type ProfitAnalysis struct {
	ID                int64         `json:"id"`
	UserID            int64         `json:"user_id"`
	InitialCapital    float64       `json:"initial_capital"`
	Months            int           `json:"investment_period"`
	ExpectedReturn    float64       `json:"expected_return"` // annual, percent
	MonthlyInvestment float64       `json:"monthly_investment"`
	RiskTolerance     RiskTolerance `json:"risk_tolerance"`
	TotalInvestment   float64       `json:"total_investment"`
	ExpectedProfit    float64       `json:"expected_profit"`
	AnnualizedReturn  float64       `json:"annualized_return"` // percent
	CreatedAt         time.Time     `json:"created_at"`
}

// InvestmentAnalysis is an archived analysis snapshot for one symbol
type InvestmentAnalysis struct {
	ID        int64                  `json:"id"`
	UUID      string                 `json:"uuid"`
	UserID    int64                  `json:"user_id"`
	Symbol    string                 `json:"symbol"`
	Type      string                 `json:"analysis_type"`
	Data      map[string]interface{} `json:"analysis_data"`
	CreatedAt time.Time              `json:"created_at"`
}
