package strategy

import (
	"time"

	"github.com/aristath/finsight/internal/domain"
)

// View is an InvestmentStrategy rendered for display
type View struct {
	Type           domain.Archetype `json:"type"`
	Name           string           `json:"name"`
	Advice         []string         `json:"advice"`
	Suitability    float64          `json:"suitability"`
	ExpectedReturn float64          `json:"expected_return"`
	RiskLevel      domain.RiskLevel `json:"risk_level"`
	RiskLabel      string           `json:"risk_label"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Describe renders a strategy with the given labels
func Describe(s domain.InvestmentStrategy, labels domain.Labels) View {
	advice := make([]string, 0, len(s.Advice))
	for _, a := range s.Advice {
		advice = append(advice, labels.Advice(a))
	}
	return View{
		Type:           s.Type,
		Name:           labels.Archetype(s.Type),
		Advice:         advice,
		Suitability:    s.Suitability,
		ExpectedReturn: s.ExpectedReturn,
		RiskLevel:      s.RiskLevel,
		RiskLabel:      labels.StrategyRisk(s.RiskLevel),
		CreatedAt:      s.CreatedAt,
	}
}
