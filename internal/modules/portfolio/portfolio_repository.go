package portfolio

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
)

// Totals are the derived columns written back after every holding change
type Totals struct {
	TotalValue      float64
	TotalProfit     float64
	TotalProfitRate float64
	RiskScore       float64
}

// PortfolioRepositoryInterface defines the contract for portfolio storage
type PortfolioRepositoryInterface interface {
	Create(p domain.Portfolio) (int64, error)
	GetByID(id int64) (*domain.Portfolio, error)
	ListByUser(userID int64) ([]domain.Portfolio, error)
	ListActive() ([]domain.Portfolio, error)
	Update(p domain.Portfolio) error
	UpdateTotals(id int64, totals Totals) error
	Delete(id int64) error
}

// PortfolioRepository handles portfolio database operations.
// Holdings are not loaded here; see HoldingRepository.
type PortfolioRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db *sql.DB, log zerolog.Logger) *PortfolioRepository {
	return &PortfolioRepository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

const portfolioColumns = `id, user_id, name, risk_tolerance, initial_capital, investment_goal,
	created_at, is_active, total_value, total_profit, total_profit_rate, risk_score`

// Create inserts a portfolio and returns its id
func (r *PortfolioRepository) Create(p domain.Portfolio) (int64, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(`
		INSERT INTO portfolios
		(user_id, name, risk_tolerance, initial_capital, investment_goal, created_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.UserID,
		strings.TrimSpace(p.Name),
		string(p.RiskTolerance),
		p.InitialCapital,
		p.InvestmentGoal,
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.Active,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert portfolio: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read portfolio id: %w", err)
	}

	r.log.Info().Int64("portfolio_id", id).Int64("user_id", p.UserID).Msg("Portfolio created")
	return id, nil
}

// GetByID returns a portfolio without holdings, or nil when none exists
func (r *PortfolioRepository) GetByID(id int64) (*domain.Portfolio, error) {
	row := r.db.QueryRow(`SELECT `+portfolioColumns+` FROM portfolios WHERE id = ?`, id)

	p, err := scanPortfolio(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan portfolio: %w", err)
	}
	return &p, nil
}

// ListByUser returns a user's portfolios, newest first
func (r *PortfolioRepository) ListByUser(userID int64) ([]domain.Portfolio, error) {
	return r.list(`SELECT `+portfolioColumns+` FROM portfolios WHERE user_id = ? ORDER BY id DESC`, userID)
}

// ListActive returns every active portfolio across users
func (r *PortfolioRepository) ListActive() ([]domain.Portfolio, error) {
	return r.list(`SELECT ` + portfolioColumns + ` FROM portfolios WHERE is_active = 1 ORDER BY id`)
}

func (r *PortfolioRepository) list(query string, args ...interface{}) ([]domain.Portfolio, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	portfolios := []domain.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios: %w", err)
	}
	return portfolios, nil
}

// RecentPortfolioID returns the newest active portfolio of a user, 0 when there is none
func (r *PortfolioRepository) RecentPortfolioID(userID int64) (int64, error) {
	var id int64
	err := r.db.QueryRow(
		`SELECT id FROM portfolios WHERE user_id = ? AND is_active = 1 ORDER BY id DESC LIMIT 1`,
		userID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query recent portfolio: %w", err)
	}
	return id, nil
}

// Update writes the user-editable fields of a portfolio
func (r *PortfolioRepository) Update(p domain.Portfolio) error {
	_, err := r.db.Exec(`
		UPDATE portfolios SET
			name = ?, risk_tolerance = ?, initial_capital = ?, investment_goal = ?, is_active = ?
		WHERE id = ?`,
		strings.TrimSpace(p.Name),
		string(p.RiskTolerance),
		p.InitialCapital,
		p.InvestmentGoal,
		p.Active,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	return nil
}

// UpdateTotals writes the derived totals and risk score
func (r *PortfolioRepository) UpdateTotals(id int64, totals Totals) error {
	_, err := r.db.Exec(`
		UPDATE portfolios SET
			total_value = ?, total_profit = ?, total_profit_rate = ?, risk_score = ?
		WHERE id = ?`,
		totals.TotalValue,
		totals.TotalProfit,
		totals.TotalProfitRate,
		totals.RiskScore,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio totals: %w", err)
	}

	r.log.Debug().
		Int64("portfolio_id", id).
		Float64("total_value", totals.TotalValue).
		Float64("risk_score", totals.RiskScore).
		Msg("Portfolio totals updated")
	return nil
}

// Delete removes a portfolio; holdings cascade
func (r *PortfolioRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM portfolios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.log.Info().Int64("portfolio_id", id).Int64("rows_affected", rowsAffected).Msg("Portfolio deleted")
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPortfolio(s scanner) (domain.Portfolio, error) {
	var p domain.Portfolio
	var tolerance, createdAt string

	err := s.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&tolerance,
		&p.InitialCapital,
		&p.InvestmentGoal,
		&createdAt,
		&p.Active,
		&p.TotalValue,
		&p.TotalProfit,
		&p.TotalProfitRate,
		&p.RiskScore,
	)
	if err != nil {
		return p, err
	}

	p.RiskTolerance = domain.RiskTolerance(tolerance)
	p.CreatedAt = parseTimestamp(createdAt)
	return p, nil
}
