package goals

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
)

// DeadlineLayout is the storage and wire format of goal deadlines
const DeadlineLayout = "2006-01-02"

// RepositoryInterface is the storage contract the goal service depends on
type RepositoryInterface interface {
	Create(goal domain.Goal) (int64, error)
	GetByID(id int64) (*domain.Goal, error)
	ListByUser(userID int64) ([]domain.Goal, error)
	UpdateProgress(id int64, current float64) error
	Delete(id int64) error
}

// Repository handles goal database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new goal repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "goals").Logger(),
	}
}

// Create inserts a goal and returns its id
func (r *Repository) Create(goal domain.Goal) (int64, error) {
	createdAt := goal.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := r.db.Exec(`
		INSERT INTO goals (user_id, name, target_amount, current_amount, deadline, risk_tolerance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		goal.UserID,
		goal.Name,
		goal.TargetAmount,
		goal.CurrentAmount,
		goal.Deadline.Format(DeadlineLayout),
		string(goal.RiskTolerance),
		createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert goal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get goal id: %w", err)
	}

	r.log.Debug().Int64("goal_id", id).Str("name", goal.Name).Msg("Goal created")
	return id, nil
}

// GetByID returns a goal, or nil if it does not exist
func (r *Repository) GetByID(id int64) (*domain.Goal, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, name, target_amount, current_amount, deadline, risk_tolerance, created_at
		FROM goals WHERE id = ?
	`, id)

	goal, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal %d: %w", id, err)
	}
	return &goal, nil
}

// ListByUser returns a user's goals in creation order
func (r *Repository) ListByUser(userID int64) ([]domain.Goal, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, target_amount, current_amount, deadline, risk_tolerance, created_at
		FROM goals WHERE user_id = ? ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	goals := []domain.Goal{}
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

// UpdateProgress sets the saved amount of a goal
func (r *Repository) UpdateProgress(id int64, current float64) error {
	if _, err := r.db.Exec(`UPDATE goals SET current_amount = ? WHERE id = ?`, current, id); err != nil {
		return fmt.Errorf("failed to update goal %d: %w", id, err)
	}
	return nil
}

// Delete removes a goal
func (r *Repository) Delete(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM goals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete goal %d: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGoal(s scanner) (domain.Goal, error) {
	var (
		goal      domain.Goal
		deadline  string
		tolerance string
		createdAt string
	)

	if err := s.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Name,
		&goal.TargetAmount,
		&goal.CurrentAmount,
		&deadline,
		&tolerance,
		&createdAt,
	); err != nil {
		return goal, err
	}

	d, err := time.ParseInLocation(DeadlineLayout, deadline, time.Local)
	if err != nil {
		return goal, fmt.Errorf("invalid deadline %q: %w", deadline, err)
	}
	goal.Deadline = d
	goal.RiskTolerance = domain.RiskTolerance(tolerance)
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		goal.CreatedAt = t
	}
	goal.Progress = Progress(goal.CurrentAmount, goal.TargetAmount)

	return goal, nil
}
