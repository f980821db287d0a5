package analysis

import (
	"bytes"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/finsight/internal/domain"
)

// ArchiveRepository stores investment_analysis snapshots as msgpack blobs
type ArchiveRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewArchiveRepository creates a new investment analysis repository
func NewArchiveRepository(db *sql.DB, log zerolog.Logger) *ArchiveRepository {
	return &ArchiveRepository{
		db:  db,
		log: log.With().Str("repo", "investment_analysis").Logger(),
	}
}

// encode serialises any value using its json tags as msgpack keys
func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save archives data and returns the stored record. The uuid is generated here.
func (r *ArchiveRepository) Save(userID int64, symbol, kind string, data interface{}, at time.Time) (*domain.InvestmentAnalysis, error) {
	blob, err := encode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}

	rec := &domain.InvestmentAnalysis{
		UUID:      uuid.New().String(),
		UserID:    userID,
		Symbol:    symbol,
		Type:      kind,
		CreatedAt: at.UTC().Truncate(time.Second),
	}

	result, err := r.db.Exec(`
		INSERT INTO investment_analysis (uuid, user_id, symbol, analysis_type, analysis_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.UUID, userID, symbol, kind, blob, rec.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to insert analysis: %w", err)
	}

	if rec.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to get analysis id: %w", err)
	}

	if err := msgpack.Unmarshal(blob, &rec.Data); err != nil {
		r.log.Debug().Err(err).Str("uuid", rec.UUID).Msg("Archived value is not a map")
	}

	r.log.Debug().
		Str("uuid", rec.UUID).
		Str("symbol", symbol).
		Str("type", kind).
		Int("bytes", len(blob)).
		Msg("Analysis archived")
	return rec, nil
}

// Latest returns the newest snapshot for (user, symbol, type), or nil if none exists
func (r *ArchiveRepository) Latest(userID int64, symbol, kind string) (*domain.InvestmentAnalysis, error) {
	var rec domain.InvestmentAnalysis
	var blob []byte
	var createdAt string

	err := r.db.QueryRow(`
		SELECT id, uuid, user_id, symbol, analysis_type, analysis_data, created_at
		FROM investment_analysis
		WHERE user_id = ? AND symbol = ? AND analysis_type = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userID, symbol, kind).Scan(&rec.ID, &rec.UUID, &rec.UserID, &rec.Symbol, &rec.Type, &blob, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis: %w", err)
	}

	if err := msgpack.Unmarshal(blob, &rec.Data); err != nil {
		return nil, fmt.Errorf("failed to decode analysis %s: %w", rec.UUID, err)
	}
	rec.CreatedAt = parseTimestamp(createdAt)
	return &rec, nil
}
