package analysis

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/finsight/internal/domain"
)

func newTestService(t *testing.T) (*Service, int64) {
	t.Helper()
	conn, userID := setupTestDB(t)
	s := NewService(NewProfitRepository(conn, zerolog.Nop()), NewArchiveRepository(conn, zerolog.Nop()), domain.NewLabels("en"), zerolog.Nop())
	s.SetClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })
	return s, userID
}

func TestService_ProjectRecordsAndAdvises(t *testing.T) {
	s, userID := newTestService(t)

	plan, err := s.Project(userID, ProjectionInput{
		InitialCapital:    5000,
		Months:            36,
		ExpectedReturn:    8,
		MonthlyInvestment: 200,
		RiskTolerance:     domain.ToleranceAggressive,
	})
	require.NoError(t, err)
	assert.NotZero(t, plan.ID)
	assert.Equal(t, domain.NewLabels("en").ProjectionAdvice(domain.ToleranceAggressive), plan.Advice)
	assert.Len(t, plan.Advice, 3)

	latest, err := s.LatestProjection(userID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, latest.ID)
	assert.InDelta(t, plan.ExpectedProfit, latest.ExpectedProfit, 1e-9)
	assert.InDelta(t, plan.AnnualizedReturn, latest.AnnualizedReturn, 1e-9)
}

func TestService_ProjectRejectsInvalidPlan(t *testing.T) {
	s, userID := newTestService(t)

	_, err := s.Project(userID, ProjectionInput{Months: 12, RiskTolerance: domain.ToleranceBalanced})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.LatestProjection(userID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ArchiveValidatesKey(t *testing.T) {
	s, userID := newTestService(t)

	_, err := s.Archive(userID, "abc", KindTechnical, map[string]interface{}{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Archive(userID, "600519", "astrology", map[string]interface{}{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.LatestArchive(userID, "600519.SH", KindCommentary)
	assert.ErrorIs(t, err, ErrNotFound)

	rec, err := s.Archive(userID, "600519.SH", KindCommentary, map[string]interface{}{"text": "steady"})
	require.NoError(t, err)

	latest, err := s.LatestArchive(userID, "600519.SH", KindCommentary)
	require.NoError(t, err)
	assert.Equal(t, rec.UUID, latest.UUID)
	assert.Equal(t, "steady", latest.Data["text"])
}
