package portfolio

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
)

// UserRepositoryInterface defines the contract for user storage
type UserRepositoryInterface interface {
	Create(user domain.User) (int64, error)
	GetByID(id int64) (*domain.User, error)
	GetRecent() (*domain.User, error)
}

// UserRepository handles user database operations
type UserRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, log zerolog.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log.With().Str("repo", "user").Logger(),
	}
}

// Create inserts a user and returns its id
func (r *UserRepository) Create(user domain.User) (int64, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO users (name, experience, created_at) VALUES (?, ?, ?)`,
		strings.TrimSpace(user.Name),
		user.Experience,
		user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}

	r.log.Info().Int64("user_id", id).Msg("User created")
	return id, nil
}

// GetByID returns a user, or nil when none exists
func (r *UserRepository) GetByID(id int64) (*domain.User, error) {
	row := r.db.QueryRow(`SELECT id, name, experience, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetRecent returns the most recently created user, or nil when there is none
func (r *UserRepository) GetRecent() (*domain.User, error) {
	row := r.db.QueryRow(`SELECT id, name, experience, created_at FROM users ORDER BY id DESC LIMIT 1`)
	return scanUser(row)
}

// RecentUserID returns the id of the most recent user, 0 when there is none
func (r *UserRepository) RecentUserID() (int64, error) {
	user, err := r.GetRecent()
	if err != nil || user == nil {
		return 0, err
	}
	return user.ID, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var createdAt string

	err := row.Scan(&user.ID, &user.Name, &user.Experience, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.CreatedAt = parseTimestamp(createdAt)
	return &user, nil
}

// parseTimestamp reads an RFC3339 column; unreadable values become the zero time
func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
