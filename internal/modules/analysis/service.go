// Package analysis projects investment plans and archives per-symbol analysis snapshots.
package analysis

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
)

var (
	// ErrInvalidInput is returned for projections or archive requests that fail validation
	ErrInvalidInput = errors.New("invalid analysis input")
	// ErrNotFound is returned when no stored analysis matches
	ErrNotFound = errors.New("analysis not found")
)

// Archive kinds accepted by Archive and LatestArchive
const (
	KindTechnical    = "technical"
	KindFundamentals = "fundamentals"
	KindCommentary   = "commentary"
)

var (
	kinds         = map[string]bool{KindTechnical: true, KindFundamentals: true, KindCommentary: true}
	symbolPattern = regexp.MustCompile(`^[0-9]{6}(\.(SH|SZ))?$`)
)

// Plan is a projection together with its advice and stored record id
type Plan struct {
	Projection
	ID     int64    `json:"id"`
	Advice []string `json:"advice"`
}

// Service runs projections and reads and writes analysis history
type Service struct {
	profits *ProfitRepository
	archive *ArchiveRepository
	labels  domain.Labels
	now     func() time.Time
	log     zerolog.Logger
}

// NewService creates a new analysis service
func NewService(profits *ProfitRepository, archive *ArchiveRepository, labels domain.Labels, log zerolog.Logger) *Service {
	return &Service{
		profits: profits,
		archive: archive,
		labels:  labels,
		now:     time.Now,
		log:     log.With().Str("service", "analysis").Logger(),
	}
}

// SetClock replaces the time source (tests)
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Project computes a plan for the user and records the summary figures
func (s *Service) Project(userID int64, in ProjectionInput) (*Plan, error) {
	p, err := Project(in)
	if err != nil {
		return nil, err
	}

	id, err := s.profits.Create(domain.ProfitAnalysis{
		UserID:            userID,
		InitialCapital:    in.InitialCapital,
		Months:            in.Months,
		ExpectedReturn:    in.ExpectedReturn,
		MonthlyInvestment: in.MonthlyInvestment,
		RiskTolerance:     in.RiskTolerance,
		TotalInvestment:   p.TotalInvestment,
		ExpectedProfit:    p.ExpectedProfit,
		AnnualizedReturn:  p.AnnualizedReturn,
		CreatedAt:         s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("user_id", userID).
		Int("months", in.Months).
		Float64("future_value", p.FutureValue).
		Msg("Projection recorded")

	return &Plan{Projection: p, ID: id, Advice: s.labels.ProjectionAdvice(in.RiskTolerance)}, nil
}

// LatestProjection returns the user's most recent stored projection
func (s *Service) LatestProjection(userID int64) (*domain.ProfitAnalysis, error) {
	p, err := s.profits.Latest(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func validateArchiveKey(symbol, kind string) error {
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("%w: symbol %q", ErrInvalidInput, symbol)
	}
	if !kinds[kind] {
		return fmt.Errorf("%w: analysis type %q", ErrInvalidInput, kind)
	}
	return nil
}

// Archive stores an analysis snapshot for the user
func (s *Service) Archive(userID int64, symbol, kind string, data interface{}) (*domain.InvestmentAnalysis, error) {
	if err := validateArchiveKey(symbol, kind); err != nil {
		return nil, err
	}
	return s.archive.Save(userID, symbol, kind, data, s.now())
}

// LatestArchive returns the newest snapshot of kind for symbol
func (s *Service) LatestArchive(userID int64, symbol, kind string) (*domain.InvestmentAnalysis, error) {
	if err := validateArchiveKey(symbol, kind); err != nil {
		return nil, err
	}
	rec, err := s.archive.Latest(userID, symbol, kind)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}
