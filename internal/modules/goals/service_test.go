package goals

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aristath/finsight/internal/domain"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(goal domain.Goal) (int64, error) {
	args := m.Called(goal)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetByID(id int64) (*domain.Goal, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockRepository) ListByUser(userID int64) ([]domain.Goal, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Goal), args.Error(1)
}

func (m *MockRepository) UpdateProgress(id int64, current float64) error {
	return m.Called(id, current).Error(0)
}

func (m *MockRepository) Delete(id int64) error {
	return m.Called(id).Error(0)
}

func newService(repo *MockRepository) *Service {
	s := NewService(repo, zerolog.Nop())
	s.SetClock(clock)
	return s
}

func TestService_Create(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.MatchedBy(func(g domain.Goal) bool {
		return g.UserID == 7 && g.Name == "edu" && g.CreatedAt.Equal(fixedNow)
	})).Return(int64(3), nil)

	goal, err := newService(repo).Create(domain.Session{UserID: 7}, goal("edu", 200, 50, fixedNow.AddDate(2, 0, 0), domain.ToleranceBalanced))

	require.NoError(t, err)
	assert.Equal(t, int64(3), goal.ID)
	assert.Equal(t, 0.25, goal.Progress)
	repo.AssertExpectations(t)
}

func TestService_CreateRejectsInvalid(t *testing.T) {
	repo := new(MockRepository)

	_, err := newService(repo).Create(domain.Session{UserID: 7}, goal("edu", 0, 0, fixedNow, domain.ToleranceBalanced))

	assert.ErrorIs(t, err, ErrInvalidGoal)
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestService_UpdateProgress_ChecksOwnership(t *testing.T) {
	repo := new(MockRepository)
	stored := goal("edu", 200, 0, fixedNow.AddDate(0, 0, 30), domain.ToleranceBalanced)
	stored.ID = 5
	stored.UserID = 1
	repo.On("GetByID", int64(5)).Return(&stored, nil)
	repo.On("UpdateProgress", int64(5), 100.0).Return(nil)

	s := newService(repo)

	_, err := s.UpdateProgress(2, 5, 100)
	assert.ErrorIs(t, err, ErrGoalNotFound)

	progress, err := s.UpdateProgress(1, 5, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.5, progress.Progress)
	assert.Equal(t, 30, progress.DaysRemaining)
	assert.InDelta(t, 100.0, progress.MonthlySaving, 1e-9)
	repo.AssertNumberOfCalls(t, "UpdateProgress", 1)
}

func TestService_ReportAndAdjustments(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListByUser", int64(1)).Return([]domain.Goal{
		goal("old", 100, 10, fixedNow.AddDate(0, 0, -1), domain.ToleranceAggressive),
		goal("broken", 0, 0, fixedNow, domain.ToleranceAggressive),
	}, nil)

	s := newService(repo)

	report, err := s.Report(1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalGoals)

	adjustments, err := s.Adjustments(1)
	require.NoError(t, err)
	assert.Equal(t, []domain.GoalAdjustment{
		{Kind: domain.AdjustExpired, Goal: "old"},
		{Kind: domain.AdjustRebalanceAggressive},
	}, adjustments)
}

func TestService_PropagatesRepositoryErrors(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListByUser", int64(1)).Return(nil, errors.New("disk full"))

	_, err := newService(repo).List(1)
	assert.EqualError(t, err, "disk full")
}

func TestService_MonthlySaving(t *testing.T) {
	repo := new(MockRepository)
	stored := goal("trip", 1000, 400, fixedNow.Add(60*24*time.Hour), domain.ToleranceBalanced)
	stored.ID = 9
	stored.UserID = 1
	repo.On("GetByID", int64(9)).Return(&stored, nil)
	repo.On("GetByID", int64(10)).Return(nil, nil)

	s := newService(repo)

	saving, err := s.MonthlySaving(1, 9)
	require.NoError(t, err)
	assert.InDelta(t, 300.0, saving, 1e-9)

	_, err = s.MonthlySaving(1, 10)
	assert.ErrorIs(t, err, ErrGoalNotFound)
}
