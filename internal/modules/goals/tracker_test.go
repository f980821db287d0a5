package goals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/finsight/internal/domain"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func goal(name string, target, current float64, deadline time.Time, tol domain.RiskTolerance) domain.Goal {
	return domain.Goal{Name: name, TargetAmount: target, CurrentAmount: current, Deadline: deadline, RiskTolerance: tol}
}

func newTracker(t *testing.T, goals ...domain.Goal) *Tracker {
	t.Helper()
	tr := NewTracker(clock)
	for _, g := range goals {
		require.NoError(t, tr.Add(g))
	}
	return tr
}

func TestAdd_Validation(t *testing.T) {
	tr := NewTracker(clock)
	deadline := fixedNow.AddDate(1, 0, 0)

	assert.ErrorIs(t, tr.Add(goal("", 100, 0, deadline, domain.ToleranceBalanced)), ErrInvalidGoal)
	assert.ErrorIs(t, tr.Add(goal("car", 0, 0, deadline, domain.ToleranceBalanced)), ErrInvalidGoal)
	assert.ErrorIs(t, tr.Add(goal("car", -5, 0, deadline, domain.ToleranceBalanced)), ErrInvalidGoal)
	assert.ErrorIs(t, tr.Add(goal("car", 100, 0, deadline, "reckless")), ErrInvalidGoal)
	assert.ErrorIs(t, tr.Add(goal("car", 100, 0, time.Time{}, domain.ToleranceBalanced)), ErrInvalidGoal)
	assert.Empty(t, tr.Goals())

	require.NoError(t, tr.Add(goal("car", 100, 25, deadline, domain.ToleranceBalanced)))
	got := tr.Goals()
	require.Len(t, got, 1)
	assert.Equal(t, 0.25, got[0].Progress)
	assert.Equal(t, fixedNow, got[0].CreatedAt)
}

func TestProgress_Clamping(t *testing.T) {
	assert.Equal(t, 1.0, Progress(150, 100))
	assert.Equal(t, 0.5, Progress(50, 100))
	assert.Equal(t, -0.2, Progress(-20, 100))
}

func TestUpdateProgress_FirstMatchWins(t *testing.T) {
	deadline := fixedNow.AddDate(0, 6, 0)
	tr := newTracker(t,
		goal("dup", 100, 0, deadline, domain.ToleranceBalanced),
		goal("dup", 200, 0, deadline, domain.ToleranceBalanced),
	)

	assert.True(t, tr.UpdateProgress("dup", 80))
	assert.False(t, tr.UpdateProgress("missing", 80))

	goals := tr.Goals()
	assert.Equal(t, 80.0, goals[0].CurrentAmount)
	assert.Equal(t, 0.8, goals[0].Progress)
	assert.Equal(t, 0.0, goals[1].CurrentAmount)

	p, ok := tr.Progress("dup")
	require.True(t, ok)
	assert.Equal(t, 100.0, p.TargetAmount)
	assert.Equal(t, 20.0, p.RemainingAmount)

	tr.UpdateProgress("dup", 500)
	p, _ = tr.Progress("dup")
	assert.Equal(t, 1.0, p.Progress)
}

func TestDuplicateNames_MonthlySavingUsesFirstMatch(t *testing.T) {
	tr := newTracker(t,
		goal("x", 100, 100, fixedNow.AddDate(0, 6, 0), domain.ToleranceBalanced),
		goal("x", 10000, 10, fixedNow.AddDate(0, 0, 30), domain.ToleranceBalanced),
	)

	progress := tr.AllProgress()
	require.Len(t, progress, 2)
	assert.Equal(t, 0.0, progress[0].MonthlySaving)
	assert.Equal(t, 0.0, progress[1].MonthlySaving)
	assert.Equal(t, 9990.0, progress[1].RemainingAmount)

	assert.Empty(t, tr.SuggestAdjustments())
}

func TestProgress_Unknown(t *testing.T) {
	tr := NewTracker(clock)
	_, ok := tr.Progress("nothing")
	assert.False(t, ok)
	assert.Equal(t, 0.0, tr.MonthlySaving("nothing"))
}

func TestRemove(t *testing.T) {
	deadline := fixedNow.AddDate(0, 6, 0)
	tr := newTracker(t,
		goal("a", 100, 0, deadline, domain.ToleranceBalanced),
		goal("b", 100, 0, deadline, domain.ToleranceBalanced),
	)

	assert.True(t, tr.Remove("a"))
	assert.False(t, tr.Remove("a"))
	require.Len(t, tr.Goals(), 1)
	assert.Equal(t, "b", tr.Goals()[0].Name)
}

func TestDaysRemaining_FloorsPartialDays(t *testing.T) {
	assert.Equal(t, 0, DaysRemaining(domain.Goal{Deadline: fixedNow.Add(23 * time.Hour)}, fixedNow))
	assert.Equal(t, 1, DaysRemaining(domain.Goal{Deadline: fixedNow.Add(25 * time.Hour)}, fixedNow))
	assert.Equal(t, -1, DaysRemaining(domain.Goal{Deadline: fixedNow.Add(-1 * time.Hour)}, fixedNow))
}

func TestMonthlySaving(t *testing.T) {
	g := goal("house", 10000, 1000, fixedNow.Add(90*24*time.Hour), domain.ToleranceBalanced)
	// 90 days = 3 months, 9000 remaining
	assert.InDelta(t, 3000.0, MonthlySaving(g, fixedNow), 1e-9)

	g.Deadline = fixedNow.Add(45 * 24 * time.Hour)
	assert.InDelta(t, 6000.0, MonthlySaving(g, fixedNow), 1e-9)
}

func TestMonthlySaving_ExpiredIsZero(t *testing.T) {
	for _, deadline := range []time.Time{
		fixedNow,
		fixedNow.Add(-time.Hour),
		fixedNow.AddDate(-2, 0, 0),
		fixedNow.Add(12 * time.Hour),
	} {
		g := goal("late", 1e9, 0, deadline, domain.ToleranceBalanced)
		assert.Equal(t, 0.0, MonthlySaving(g, fixedNow), deadline.String())
	}
}

func TestReport(t *testing.T) {
	deadline := fixedNow.AddDate(1, 0, 0)
	tr := newTracker(t,
		goal("a", 300, 150, deadline, domain.ToleranceConservative),
		goal("b", 100, 50, deadline, domain.ToleranceAggressive),
	)

	r := tr.Report()

	assert.Equal(t, 2, r.TotalGoals)
	assert.Equal(t, 400.0, r.TotalTarget)
	assert.Equal(t, 200.0, r.TotalCurrent)
	assert.Equal(t, 0.5, r.TotalProgress)
	assert.Len(t, r.Goals, 2)
	assert.Equal(t, map[domain.RiskTolerance]float64{
		domain.ToleranceConservative: 0.75,
		domain.ToleranceBalanced:     0,
		domain.ToleranceAggressive:   0.25,
	}, r.RiskDistribution)
}

func TestReport_Empty(t *testing.T) {
	r := NewTracker(clock).Report()

	assert.Equal(t, 0, r.TotalGoals)
	assert.Equal(t, 0.0, r.TotalProgress)
	assert.Empty(t, r.Goals)
	assert.Len(t, r.RiskDistribution, 3)
}

func TestSuggestAdjustments(t *testing.T) {
	tr := newTracker(t,
		goal("expired", 100, 10, fixedNow.AddDate(0, 0, -3), domain.ToleranceAggressive),
		goal("burden", 10000, 100, fixedNow.AddDate(0, 0, 60), domain.ToleranceAggressive),
		goal("fine", 1000, 900, fixedNow.AddDate(0, 0, 300), domain.ToleranceBalanced),
	)

	adjustments := tr.SuggestAdjustments()

	assert.Equal(t, []domain.GoalAdjustment{
		{Kind: domain.AdjustExpired, Goal: "expired"},
		{Kind: domain.AdjustBurdenHigh, Goal: "burden"},
		{Kind: domain.AdjustRebalanceAggressive},
	}, adjustments)
}

func TestSuggestAdjustments_ConservativeHeavy(t *testing.T) {
	deadline := fixedNow.AddDate(5, 0, 0)
	tr := newTracker(t,
		goal("safe", 800, 800, deadline, domain.ToleranceConservative),
		goal("other", 200, 200, deadline, domain.ToleranceBalanced),
	)

	assert.Equal(t, []domain.GoalAdjustment{{Kind: domain.AdjustRaiseYield}}, tr.SuggestAdjustments())
}

func TestSuggestAdjustments_None(t *testing.T) {
	assert.Empty(t, NewTracker(clock).SuggestAdjustments())
}
