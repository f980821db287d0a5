package risk

import (
	"time"

	"github.com/aristath/finsight/internal/domain"
)

// FactorView is a risk factor with its rendered message
type FactorView struct {
	domain.RiskFactor
	Message string `json:"message"`
}

// SuggestionView is a suggestion with its rendered message
type SuggestionView struct {
	Kind    domain.Suggestion `json:"kind"`
	Message string            `json:"message"`
}

// AssessmentView is a RiskAssessment rendered for display
type AssessmentView struct {
	Outcome     domain.AssessmentOutcome `json:"outcome"`
	Score       float64                  `json:"score"`
	Level       domain.RiskLevel         `json:"level"`
	LevelLabel  string                   `json:"level_label"`
	Factors     []FactorView             `json:"factors"`
	Suggestions []SuggestionView         `json:"suggestions"`
	AssessedAt  time.Time                `json:"assessed_at"`
}

// Describe renders an assessment with the given labels
func Describe(a domain.RiskAssessment, labels domain.Labels) AssessmentView {
	view := AssessmentView{
		Outcome:     a.Outcome,
		Score:       a.Score,
		Level:       a.Level,
		LevelLabel:  labels.Level(a.Level),
		Factors:     make([]FactorView, 0, len(a.Factors)),
		Suggestions: make([]SuggestionView, 0, len(a.Suggestions)),
		AssessedAt:  a.AssessedAt,
	}
	for _, f := range a.Factors {
		view.Factors = append(view.Factors, FactorView{RiskFactor: f, Message: labels.Factor(f)})
	}
	for _, s := range a.Suggestions {
		view.Suggestions = append(view.Suggestions, SuggestionView{Kind: s, Message: labels.Suggestion(s)})
	}
	return view
}
