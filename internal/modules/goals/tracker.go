// Package goals tracks savings goals: progress, required monthly saving,
// aggregate reports and adjustment suggestions.
package goals

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aristath/finsight/internal/domain"
)

// Adjustment thresholds
const (
	daysPerMonth         = 30.0
	burdenShareOfCurrent = 0.5
	aggressiveShareLimit = 0.5
	conservativeShareMax = 0.7
)

// ErrInvalidGoal is returned when a goal fails validation
var ErrInvalidGoal = errors.New("invalid goal")

// GoalProgress is the computed state of one goal at a point in time
type GoalProgress struct {
	ID              int64                `json:"id,omitempty"`
	Name            string               `json:"name"`
	TargetAmount    float64              `json:"target_amount"`
	CurrentAmount   float64              `json:"current_amount"`
	Progress        float64              `json:"progress"`
	RemainingAmount float64              `json:"remaining_amount"`
	DaysRemaining   int                  `json:"days_remaining"`
	MonthlySaving   float64              `json:"monthly_saving"`
	RiskTolerance   domain.RiskTolerance `json:"risk_tolerance"`
	Deadline        time.Time            `json:"deadline"`
}

// Report aggregates every tracked goal
type Report struct {
	TotalGoals       int                              `json:"total_goals"`
	TotalTarget      float64                          `json:"total_target_amount"`
	TotalCurrent     float64                          `json:"total_current_amount"`
	TotalProgress    float64                          `json:"total_progress"`
	Goals            []GoalProgress                   `json:"goals"`
	RiskDistribution map[domain.RiskTolerance]float64 `json:"risk_distribution"`
}

// Validate checks the fields a goal must carry before it can be tracked
func Validate(g domain.Goal) error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidGoal)
	}
	if math.IsNaN(g.TargetAmount) || math.IsInf(g.TargetAmount, 0) || g.TargetAmount <= 0 {
		return fmt.Errorf("%w: target amount must be positive", ErrInvalidGoal)
	}
	if math.IsNaN(g.CurrentAmount) || math.IsInf(g.CurrentAmount, 0) {
		return fmt.Errorf("%w: current amount must be finite", ErrInvalidGoal)
	}
	if !g.RiskTolerance.Valid() {
		return fmt.Errorf("%w: unknown risk tolerance %q", ErrInvalidGoal, g.RiskTolerance)
	}
	if g.Deadline.IsZero() {
		return fmt.Errorf("%w: deadline is required", ErrInvalidGoal)
	}
	return nil
}

// Progress returns current/target capped at 1. There is no lower bound: a
// negative current amount gives a negative progress.
func Progress(current, target float64) float64 {
	if target == 0 {
		return 0
	}
	return math.Min(current/target, 1.0)
}

// DaysRemaining returns whole days until the deadline, rounded down, so a
// deadline earlier today is already -1.
func DaysRemaining(g domain.Goal, now time.Time) int {
	return int(math.Floor(g.Deadline.Sub(now).Hours() / 24))
}

// MonthlySaving returns the amount to save per 30-day month to reach the
// target by the deadline, or 0 once the deadline has been reached.
func MonthlySaving(g domain.Goal, now time.Time) float64 {
	days := DaysRemaining(g, now)
	if days <= 0 {
		return 0
	}
	months := float64(days) / daysPerMonth
	return (g.TargetAmount - g.CurrentAmount) / months
}

// ProgressOf computes the progress snapshot of g at now
func ProgressOf(g domain.Goal, now time.Time) GoalProgress {
	return GoalProgress{
		ID:              g.ID,
		Name:            g.Name,
		TargetAmount:    g.TargetAmount,
		CurrentAmount:   g.CurrentAmount,
		Progress:        Progress(g.CurrentAmount, g.TargetAmount),
		RemainingAmount: g.TargetAmount - g.CurrentAmount,
		DaysRemaining:   DaysRemaining(g, now),
		MonthlySaving:   MonthlySaving(g, now),
		RiskTolerance:   g.RiskTolerance,
		Deadline:        g.Deadline,
	}
}

// Tracker holds an ordered list of goals keyed by name. Duplicate names are
// allowed; lookups use the first match.
type Tracker struct {
	goals []domain.Goal
	now   func() time.Time
}

// NewTracker creates an empty tracker. A nil clock uses time.Now.
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{now: now}
}

// Add validates g, derives its progress and appends it
func (t *Tracker) Add(g domain.Goal) error {
	if err := Validate(g); err != nil {
		return err
	}
	g.Progress = Progress(g.CurrentAmount, g.TargetAmount)
	if g.CreatedAt.IsZero() {
		g.CreatedAt = t.now()
	}
	t.goals = append(t.goals, g)
	return nil
}

// Goals returns a copy of the tracked goals in insertion order
func (t *Tracker) Goals() []domain.Goal {
	out := make([]domain.Goal, len(t.goals))
	copy(out, t.goals)
	return out
}

func (t *Tracker) find(name string) int {
	for i := range t.goals {
		if t.goals[i].Name == name {
			return i
		}
	}
	return -1
}

// UpdateProgress sets the current amount of the first goal named name.
// It reports whether a goal was found.
func (t *Tracker) UpdateProgress(name string, current float64) bool {
	i := t.find(name)
	if i < 0 {
		return false
	}
	t.goals[i].CurrentAmount = current
	t.goals[i].Progress = Progress(current, t.goals[i].TargetAmount)
	return true
}

// Remove deletes the first goal named name
func (t *Tracker) Remove(name string) bool {
	i := t.find(name)
	if i < 0 {
		return false
	}
	t.goals = append(t.goals[:i], t.goals[i+1:]...)
	return true
}

// Progress returns the progress snapshot of the first goal named name
func (t *Tracker) Progress(name string) (GoalProgress, bool) {
	i := t.find(name)
	if i < 0 {
		return GoalProgress{}, false
	}
	return ProgressOf(t.goals[i], t.now()), true
}

// AllProgress returns a progress snapshot for every goal. Monthly saving is
// looked up by name, so goals sharing a name all report the first one's.
func (t *Tracker) AllProgress() []GoalProgress {
	now := t.now()
	out := make([]GoalProgress, 0, len(t.goals))
	for _, g := range t.goals {
		p := ProgressOf(g, now)
		p.MonthlySaving = t.MonthlySaving(g.Name)
		out = append(out, p)
	}
	return out
}

// MonthlySaving returns the required monthly saving of the first goal named
// name, or 0 if there is no such goal.
func (t *Tracker) MonthlySaving(name string) float64 {
	i := t.find(name)
	if i < 0 {
		return 0
	}
	return MonthlySaving(t.goals[i], t.now())
}

func (t *Tracker) totals() (target, current float64) {
	for _, g := range t.goals {
		target += g.TargetAmount
		current += g.CurrentAmount
	}
	return target, current
}

// RiskDistribution returns each tolerance's share of the total target. All
// three tolerances are always present.
func (t *Tracker) RiskDistribution() map[domain.RiskTolerance]float64 {
	distribution := make(map[domain.RiskTolerance]float64, len(domain.Tolerances))
	for _, tol := range domain.Tolerances {
		distribution[tol] = 0
	}

	total, _ := t.totals()
	if total == 0 {
		return distribution
	}

	for _, g := range t.goals {
		distribution[g.RiskTolerance] += g.TargetAmount / total
	}
	return distribution
}

// Report aggregates totals, per-goal progress and the risk distribution
func (t *Tracker) Report() Report {
	target, current := t.totals()

	overall := 0.0
	if target > 0 {
		overall = current / target
	}

	return Report{
		TotalGoals:       len(t.goals),
		TotalTarget:      target,
		TotalCurrent:     current,
		TotalProgress:    overall,
		Goals:            t.AllProgress(),
		RiskDistribution: t.RiskDistribution(),
	}
}

// SuggestAdjustments flags expired goals and goals whose monthly saving
// (looked up by name) exceeds half the amount already saved, then checks the risk mix: an
// aggressive share above 50% suggests rebalancing, otherwise a conservative
// share above 70% suggests raising the yield target.
func (t *Tracker) SuggestAdjustments() []domain.GoalAdjustment {
	now := t.now()
	adjustments := []domain.GoalAdjustment{}

	for _, g := range t.goals {
		if DaysRemaining(g, now) < 0 {
			adjustments = append(adjustments, domain.GoalAdjustment{Kind: domain.AdjustExpired, Goal: g.Name})
		} else if t.MonthlySaving(g.Name) > g.CurrentAmount*burdenShareOfCurrent {
			adjustments = append(adjustments, domain.GoalAdjustment{Kind: domain.AdjustBurdenHigh, Goal: g.Name})
		}
	}

	distribution := t.RiskDistribution()
	if distribution[domain.ToleranceAggressive] > aggressiveShareLimit {
		adjustments = append(adjustments, domain.GoalAdjustment{Kind: domain.AdjustRebalanceAggressive})
	} else if distribution[domain.ToleranceConservative] > conservativeShareMax {
		adjustments = append(adjustments, domain.GoalAdjustment{Kind: domain.AdjustRaiseYield})
	}

	return adjustments
}
