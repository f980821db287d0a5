package portfolio

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
)

// HoldingRepositoryInterface defines the contract for holding storage
type HoldingRepositoryInterface interface {
	Create(h domain.Holding) (int64, error)
	GetByID(id int64) (*domain.Holding, error)
	ListByPortfolio(portfolioID int64) ([]domain.Holding, error)
	UpdatePrice(id int64, price float64, at time.Time) error
	Delete(id int64) error
}

// HoldingRepository handles holding database operations.
// market_value, profit and profit_rate are stored alongside the inputs they
// derive from and rewritten whenever the price changes.
type HoldingRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *sql.DB, log zerolog.Logger) *HoldingRepository {
	return &HoldingRepository{
		db:  db,
		log: log.With().Str("repo", "holding").Logger(),
	}
}

const holdingColumns = `id, portfolio_id, symbol, name, category, quantity, cost_price,
	current_price, purchase_date, last_updated`

// Create inserts a holding and returns its id
func (r *HoldingRepository) Create(h domain.Holding) (int64, error) {
	now := time.Now()
	if h.LastUpdated.IsZero() {
		h.LastUpdated = now
	}
	if h.PurchaseDate.IsZero() {
		h.PurchaseDate = now
	}

	// Normalize symbol
	h.Symbol = strings.ToUpper(strings.TrimSpace(h.Symbol))

	result, err := r.db.Exec(`
		INSERT INTO holdings
		(portfolio_id, symbol, name, category, quantity, cost_price, current_price,
		 market_value, profit, profit_rate, purchase_date, last_updated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.PortfolioID,
		h.Symbol,
		h.Name,
		string(h.Category),
		h.Quantity,
		h.CostPrice,
		h.CurrentPrice,
		h.MarketValue(),
		h.Profit(),
		h.ProfitRate(),
		h.PurchaseDate.UTC().Format(time.RFC3339),
		h.LastUpdated.UTC().Format(time.RFC3339),
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert holding: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read holding id: %w", err)
	}

	r.log.Info().Int64("holding_id", id).Str("symbol", h.Symbol).Msg("Holding created")
	return id, nil
}

// GetByID returns a holding, or nil when none exists
func (r *HoldingRepository) GetByID(id int64) (*domain.Holding, error) {
	row := r.db.QueryRow(`SELECT `+holdingColumns+` FROM holdings WHERE id = ?`, id)

	h, err := scanHolding(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan holding: %w", err)
	}
	return &h, nil
}

// ListByPortfolio returns the holdings of a portfolio in insertion order
func (r *HoldingRepository) ListByPortfolio(portfolioID int64) ([]domain.Holding, error) {
	rows, err := r.db.Query(`SELECT `+holdingColumns+` FROM holdings WHERE portfolio_id = ? ORDER BY id`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := []domain.Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}
	return holdings, nil
}

// UpdatePrice updates current price and recalculates market value and P&L.
// cost_price is never touched.
func (r *HoldingRepository) UpdatePrice(id int64, price float64, at time.Time) error {
	query := `
		UPDATE holdings SET
			current_price = ?,
			market_value = quantity * ?,
			profit = (? - cost_price) * quantity,
			profit_rate = CASE
				WHEN cost_price > 0 AND quantity > 0 THEN (? / cost_price) - 1
				ELSE 0
			END,
			last_updated = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		price,
		price,
		price,
		price,
		at.UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update price: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.log.Debug().
		Int64("holding_id", id).
		Float64("price", price).
		Int64("rows_affected", rowsAffected).
		Msg("Holding price updated")

	return nil
}

// Delete deletes a holding by id
func (r *HoldingRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM holdings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.log.Info().Int64("holding_id", id).Int64("rows_affected", rowsAffected).Msg("Holding deleted")
	return nil
}

func scanHolding(s scanner) (domain.Holding, error) {
	var h domain.Holding
	var category, purchaseDate, lastUpdated string

	err := s.Scan(
		&h.ID,
		&h.PortfolioID,
		&h.Symbol,
		&h.Name,
		&category,
		&h.Quantity,
		&h.CostPrice,
		&h.CurrentPrice,
		&purchaseDate,
		&lastUpdated,
	)
	if err != nil {
		return h, err
	}

	h.Category = domain.ParseCategory(category)
	h.PurchaseDate = parseTimestamp(purchaseDate)
	h.LastUpdated = parseTimestamp(lastUpdated)
	return h, nil
}
