package goals

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
)

// ErrGoalNotFound is returned when a goal id does not belong to the user
var ErrGoalNotFound = errors.New("goal not found")

// Service loads a user's goals into a Tracker for every operation
type Service struct {
	repo RepositoryInterface
	now  func() time.Time
	log  zerolog.Logger
}

// NewService creates a new goal service
func NewService(repo RepositoryInterface, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
		log:  log.With().Str("service", "goals").Logger(),
	}
}

// SetClock replaces the time source (tests)
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Tracker returns a tracker populated with the user's stored goals
func (s *Service) Tracker(userID int64) (*Tracker, error) {
	stored, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	tracker := NewTracker(s.now)
	for _, g := range stored {
		if err := tracker.Add(g); err != nil {
			// Rows written before validation existed; skip rather than fail the report
			s.log.Warn().Err(err).Int64("goal_id", g.ID).Msg("Skipping invalid stored goal")
		}
	}
	return tracker, nil
}

// Create validates and stores a new goal for the session user
func (s *Service) Create(session domain.Session, goal domain.Goal) (*domain.Goal, error) {
	goal.UserID = session.UserID
	goal.CreatedAt = s.now()
	if err := Validate(goal); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(goal)
	if err != nil {
		return nil, err
	}

	goal.ID = id
	goal.Progress = Progress(goal.CurrentAmount, goal.TargetAmount)
	return &goal, nil
}

// List returns progress snapshots for every goal of the user
func (s *Service) List(userID int64) ([]GoalProgress, error) {
	tracker, err := s.Tracker(userID)
	if err != nil {
		return nil, err
	}
	return tracker.AllProgress(), nil
}

func (s *Service) owned(userID, id int64) (*domain.Goal, error) {
	goal, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if goal == nil || goal.UserID != userID {
		return nil, ErrGoalNotFound
	}
	return goal, nil
}

// UpdateProgress records a new saved amount
func (s *Service) UpdateProgress(userID, id int64, current float64) (*GoalProgress, error) {
	if math.IsNaN(current) || math.IsInf(current, 0) {
		return nil, fmt.Errorf("%w: current amount must be finite", ErrInvalidGoal)
	}

	goal, err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProgress(id, current); err != nil {
		return nil, err
	}

	goal.CurrentAmount = current
	progress := ProgressOf(*goal, s.now())
	return &progress, nil
}

// Delete removes a goal owned by the user
func (s *Service) Delete(userID, id int64) error {
	if _, err := s.owned(userID, id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// MonthlySaving returns the monthly saving required for one goal
func (s *Service) MonthlySaving(userID, id int64) (float64, error) {
	goal, err := s.owned(userID, id)
	if err != nil {
		return 0, err
	}
	return MonthlySaving(*goal, s.now()), nil
}

// Report builds the aggregate progress report for the user
func (s *Service) Report(userID int64) (*Report, error) {
	tracker, err := s.Tracker(userID)
	if err != nil {
		return nil, err
	}
	report := tracker.Report()
	return &report, nil
}

// Adjustments returns goal adjustment suggestions for the user
func (s *Service) Adjustments(userID int64) ([]domain.GoalAdjustment, error) {
	tracker, err := s.Tracker(userID)
	if err != nil {
		return nil, err
	}
	return tracker.SuggestAdjustments(), nil
}
