package analysis

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
)

// ProfitRepository handles profit_analysis database operations
type ProfitRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewProfitRepository creates a new profit analysis repository
func NewProfitRepository(db *sql.DB, log zerolog.Logger) *ProfitRepository {
	return &ProfitRepository{
		db:  db,
		log: log.With().Str("repo", "profit_analysis").Logger(),
	}
}

// Create inserts a projection record and returns its id
func (r *ProfitRepository) Create(p domain.ProfitAnalysis) (int64, error) {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := r.db.Exec(`
		INSERT INTO profit_analysis (
			user_id, initial_capital, investment_period, expected_return,
			monthly_investment, risk_tolerance, total_investment,
			expected_profit, annualized_return, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.UserID,
		p.InitialCapital,
		p.Months,
		p.ExpectedReturn,
		p.MonthlyInvestment,
		string(p.RiskTolerance),
		p.TotalInvestment,
		p.ExpectedProfit,
		p.AnnualizedReturn,
		createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert profit analysis: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get profit analysis id: %w", err)
	}
	return id, nil
}

// Latest returns the most recent projection for a user, or nil if none exists
func (r *ProfitRepository) Latest(userID int64) (*domain.ProfitAnalysis, error) {
	var p domain.ProfitAnalysis
	var tolerance, createdAt string

	err := r.db.QueryRow(`
		SELECT id, user_id, initial_capital, investment_period, expected_return,
		       monthly_investment, risk_tolerance, total_investment,
		       expected_profit, annualized_return, created_at
		FROM profit_analysis
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userID).Scan(
		&p.ID, &p.UserID, &p.InitialCapital, &p.Months, &p.ExpectedReturn,
		&p.MonthlyInvestment, &tolerance, &p.TotalInvestment,
		&p.ExpectedProfit, &p.AnnualizedReturn, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profit analysis: %w", err)
	}

	p.RiskTolerance = domain.RiskTolerance(tolerance)
	p.CreatedAt = parseTimestamp(createdAt)
	return &p, nil
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
