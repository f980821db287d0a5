package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
)

// TransactionRepositoryInterface defines the contract for transaction storage
type TransactionRepositoryInterface interface {
	Create(tx domain.Transaction) (int64, error)
	ListByUser(userID, holdingID int64) ([]domain.Transaction, error)
}

// TransactionRepository handles transaction database operations
type TransactionRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sql.DB, log zerolog.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:  db,
		log: log.With().Str("repo", "transaction").Logger(),
	}
}

// Create records a transaction and returns its id
func (r *TransactionRepository) Create(tx domain.Transaction) (int64, error) {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(`
		INSERT INTO transactions (user_id, holding_id, type, quantity, price, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID,
		tx.HoldingID,
		string(tx.Type),
		tx.Quantity,
		tx.Price,
		tx.Amount,
		tx.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read transaction id: %w", err)
	}

	r.log.Info().
		Int64("transaction_id", id).
		Int64("holding_id", tx.HoldingID).
		Str("type", string(tx.Type)).
		Msg("Transaction recorded")
	return id, nil
}

// ListByUser returns a user's transactions oldest first. A holdingID of 0
// returns every holding.
func (r *TransactionRepository) ListByUser(userID, holdingID int64) ([]domain.Transaction, error) {
	query := `SELECT id, user_id, holding_id, type, quantity, price, amount, created_at
		FROM transactions WHERE user_id = ?`
	args := []interface{}{userID}
	if holdingID > 0 {
		query += ` AND holding_id = ?`
		args = append(args, holdingID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var tx domain.Transaction
		var txType, createdAt string
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.HoldingID, &txType, &tx.Quantity, &tx.Price, &tx.Amount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Type = domain.TransactionType(txType)
		tx.CreatedAt = parseTimestamp(createdAt)
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}
