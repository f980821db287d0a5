// Package portfolio owns users, portfolios, holdings and transactions. The
// service keeps the derived portfolio columns (totals, risk score) in step
// with the holdings and exposes valuation, risk and strategy views.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/risk"
	"github.com/aristath/finsight/internal/modules/strategy"
	"github.com/aristath/finsight/internal/modules/valuation"
)

// Errors returned by the service
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrHoldingNotFound   = errors.New("holding not found")
	ErrInvalidInput      = errors.New("invalid input")
)

// PortfolioUpdate carries the editable portfolio fields; nil leaves a field unchanged
type PortfolioUpdate struct {
	Name           *string               `json:"name,omitempty"`
	RiskTolerance  *domain.RiskTolerance `json:"risk_tolerance,omitempty"`
	InvestmentGoal *string               `json:"investment_goal,omitempty"`
	InitialCapital *float64              `json:"initial_capital,omitempty"`
	Active         *bool                 `json:"active,omitempty"`
}

// MetricsView is the valuation of a portfolio plus both risk scores
type MetricsView struct {
	valuation.Metrics
	PortfolioID     int64   `json:"portfolio_id"`
	WeightedScore   float64 `json:"weighted_risk_score"`
	VolatilityScore float64 `json:"volatility_score"`
	HoldingCount    int     `json:"holding_count"`
}

// RefreshResult reports a price refresh
type RefreshResult struct {
	PortfolioID int64    `json:"portfolio_id"`
	Updated     int      `json:"updated"`
	Skipped     int      `json:"skipped"`
	Failed      []string `json:"failed"`
}

// PortfolioService orchestrates portfolio storage and the pure valuation,
// risk and strategy calculations.
type PortfolioService struct {
	users        UserRepositoryInterface
	portfolios   PortfolioRepositoryInterface
	holdings     HoldingRepositoryInterface
	transactions TransactionRepositoryInterface
	quotes       domain.QuoteProvider
	now          func() time.Time
	log          zerolog.Logger
}

// NewPortfolioService creates a new portfolio service. quotes may be nil, in
// which case price refreshes fail.
func NewPortfolioService(
	users UserRepositoryInterface,
	portfolios PortfolioRepositoryInterface,
	holdings HoldingRepositoryInterface,
	transactions TransactionRepositoryInterface,
	quotes domain.QuoteProvider,
	log zerolog.Logger,
) *PortfolioService {
	return &PortfolioService{
		users:        users,
		portfolios:   portfolios,
		holdings:     holdings,
		transactions: transactions,
		quotes:       quotes,
		now:          time.Now,
		log:          log.With().Str("service", "portfolio").Logger(),
	}
}

// SetClock replaces the time source (tests)
func (s *PortfolioService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateUser registers a new user
func (s *PortfolioService) CreateUser(name, experience string) (*domain.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	user := domain.User{Name: strings.TrimSpace(name), Experience: experience, CreatedAt: s.now()}
	id, err := s.users.Create(user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return &user, nil
}

// User returns a user by id
func (s *PortfolioService) User(id int64) (*domain.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// RecentUser returns the most recently created user
func (s *PortfolioService) RecentUser() (*domain.User, error) {
	user, err := s.users.GetRecent()
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// CreatePortfolio creates an empty, active portfolio for the user
func (s *PortfolioService) CreatePortfolio(userID int64, p domain.Portfolio) (*domain.Portfolio, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !p.RiskTolerance.Valid() {
		return nil, fmt.Errorf("%w: unknown risk tolerance %q", ErrInvalidInput, p.RiskTolerance)
	}
	if !finite(p.InitialCapital) || p.InitialCapital < 0 {
		return nil, fmt.Errorf("%w: initial capital must be a non-negative number", ErrInvalidInput)
	}
	if _, err := s.User(userID); err != nil {
		return nil, err
	}

	p.UserID = userID
	p.Active = true
	p.CreatedAt = s.now()
	p.Holdings = []domain.Holding{}

	id, err := s.portfolios.Create(p)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return &p, nil
}

func (s *PortfolioService) owned(userID, portfolioID int64) (*domain.Portfolio, error) {
	p, err := s.portfolios.GetByID(portfolioID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.UserID != userID {
		return nil, ErrPortfolioNotFound
	}
	return p, nil
}

// Portfolio returns a portfolio with its holdings
func (s *PortfolioService) Portfolio(userID, portfolioID int64) (*domain.Portfolio, error) {
	p, err := s.owned(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	holdings, err := s.holdings.ListByPortfolio(portfolioID)
	if err != nil {
		return nil, err
	}
	p.Holdings = holdings
	return p, nil
}

// Portfolios returns the user's portfolios without holdings
func (s *PortfolioService) Portfolios(userID int64) ([]domain.Portfolio, error) {
	return s.portfolios.ListByUser(userID)
}

// UpdatePortfolio applies the non-nil fields of update
func (s *PortfolioService) UpdatePortfolio(userID, portfolioID int64, update PortfolioUpdate) (*domain.Portfolio, error) {
	p, err := s.owned(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		p.Name = *update.Name
	}
	if update.RiskTolerance != nil {
		if !update.RiskTolerance.Valid() {
			return nil, fmt.Errorf("%w: unknown risk tolerance %q", ErrInvalidInput, *update.RiskTolerance)
		}
		p.RiskTolerance = *update.RiskTolerance
	}
	if update.InvestmentGoal != nil {
		p.InvestmentGoal = *update.InvestmentGoal
	}
	if update.InitialCapital != nil {
		if !finite(*update.InitialCapital) || *update.InitialCapital < 0 {
			return nil, fmt.Errorf("%w: initial capital must be a non-negative number", ErrInvalidInput)
		}
		p.InitialCapital = *update.InitialCapital
	}
	if update.Active != nil {
		p.Active = *update.Active
	}

	if err := s.portfolios.Update(*p); err != nil {
		return nil, err
	}

	// The stored risk score depends on the tolerance
	if _, err := s.recompute(p.ID, p.RiskTolerance); err != nil {
		return nil, err
	}
	return s.Portfolio(userID, portfolioID)
}

// DeletePortfolio removes a portfolio and its holdings
func (s *PortfolioService) DeletePortfolio(userID, portfolioID int64) error {
	if _, err := s.owned(userID, portfolioID); err != nil {
		return err
	}
	return s.portfolios.Delete(portfolioID)
}

// Holdings returns the holdings of a portfolio
func (s *PortfolioService) Holdings(userID, portfolioID int64) ([]domain.Holding, error) {
	if _, err := s.owned(userID, portfolioID); err != nil {
		return nil, err
	}
	return s.holdings.ListByPortfolio(portfolioID)
}

// AddHolding validates and stores a holding, then recomputes the portfolio totals
func (s *PortfolioService) AddHolding(userID, portfolioID int64, h domain.Holding) (*domain.Holding, error) {
	p, err := s.owned(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	h.Symbol = strings.ToUpper(strings.TrimSpace(h.Symbol))
	h.Category = domain.ParseCategory(string(h.Category))
	if h.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}
	if h.Name == "" {
		h.Name = h.Symbol
	}
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now()
	h.PortfolioID = portfolioID
	h.LastUpdated = now
	if h.PurchaseDate.IsZero() {
		h.PurchaseDate = now
	}

	id, err := s.holdings.Create(h)
	if err != nil {
		return nil, err
	}
	h.ID = id

	if _, err := s.recompute(portfolioID, p.RiskTolerance); err != nil {
		return nil, err
	}
	return &h, nil
}

// RemoveHolding deletes a holding from a portfolio
func (s *PortfolioService) RemoveHolding(userID, portfolioID, holdingID int64) error {
	p, err := s.owned(userID, portfolioID)
	if err != nil {
		return err
	}

	h, err := s.holdings.GetByID(holdingID)
	if err != nil {
		return err
	}
	if h == nil || h.PortfolioID != portfolioID {
		return ErrHoldingNotFound
	}

	if err := s.holdings.Delete(holdingID); err != nil {
		return err
	}
	_, err = s.recompute(portfolioID, p.RiskTolerance)
	return err
}

// RefreshPrices pulls the latest quote for every non-cash holding. Symbols
// whose quote fails are logged and reported, not fatal.
func (s *PortfolioService) RefreshPrices(ctx context.Context, userID, portfolioID int64) (*RefreshResult, error) {
	p, err := s.owned(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, p)
}

// RefreshAll refreshes prices for every active portfolio
func (s *PortfolioService) RefreshAll(ctx context.Context) ([]RefreshResult, error) {
	portfolios, err := s.portfolios.ListActive()
	if err != nil {
		return nil, err
	}

	results := make([]RefreshResult, 0, len(portfolios))
	for i := range portfolios {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := s.refresh(ctx, &portfolios[i])
		if err != nil {
			s.log.Warn().Err(err).Int64("portfolio_id", portfolios[i].ID).Msg("Price refresh failed")
			continue
		}
		results = append(results, *result)
	}
	return results, nil
}

func (s *PortfolioService) refresh(ctx context.Context, p *domain.Portfolio) (*RefreshResult, error) {
	if s.quotes == nil {
		return nil, fmt.Errorf("quote provider not available")
	}

	holdings, err := s.holdings.ListByPortfolio(p.ID)
	if err != nil {
		return nil, err
	}

	result := &RefreshResult{PortfolioID: p.ID, Failed: []string{}}
	for _, h := range holdings {
		if h.Category == domain.CategoryCash {
			result.Skipped++
			continue
		}

		quote, err := s.quotes.Quote(ctx, h.Symbol)
		if err != nil || quote == nil || quote.Current <= 0 {
			s.log.Warn().Err(err).Str("symbol", h.Symbol).Msg("Failed to fetch quote, keeping last price")
			result.Failed = append(result.Failed, h.Symbol)
			continue
		}

		if err := s.holdings.UpdatePrice(h.ID, quote.Current, s.now()); err != nil {
			return nil, err
		}
		result.Updated++
	}

	if _, err := s.recompute(p.ID, p.RiskTolerance); err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("portfolio_id", p.ID).
		Int("updated", result.Updated).
		Int("failed", len(result.Failed)).
		Msg("Prices refreshed")
	return result, nil
}

// recompute rewrites the derived portfolio columns from the stored holdings
func (s *PortfolioService) recompute(portfolioID int64, tolerance domain.RiskTolerance) (Totals, error) {
	holdings, err := s.holdings.ListByPortfolio(portfolioID)
	if err != nil {
		return Totals{}, err
	}

	value := valuation.TotalValue(holdings)
	totals := Totals{
		TotalValue:      value,
		TotalProfit:     value - valuation.TotalCost(holdings),
		TotalProfitRate: valuation.TotalReturn(holdings),
		RiskScore:       risk.VolatilityScore(holdings, tolerance),
	}

	if err := s.portfolios.UpdateTotals(portfolioID, totals); err != nil {
		return Totals{}, err
	}
	return totals, nil
}

// Metrics returns the valuation and risk scores of a portfolio
func (s *PortfolioService) Metrics(userID, portfolioID int64) (*MetricsView, error) {
	p, err := s.Portfolio(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	return &MetricsView{
		PortfolioID:     p.ID,
		Metrics:         valuation.Calculate(p.Holdings),
		WeightedScore:   risk.WeightedScore(p.Holdings),
		VolatilityScore: risk.VolatilityScore(p.Holdings, p.RiskTolerance),
		HoldingCount:    len(p.Holdings),
	}, nil
}

// Assess runs the heuristic risk assessment over a portfolio's holdings
func (s *PortfolioService) Assess(userID, portfolioID int64) (*domain.RiskAssessment, error) {
	p, err := s.Portfolio(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	assessment := risk.Assess(p.Holdings, s.now())
	return &assessment, nil
}

// Strategy recommends a strategy from the portfolio's weighted risk score
func (s *PortfolioService) Strategy(userID, portfolioID int64) (*domain.InvestmentStrategy, error) {
	p, err := s.Portfolio(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	recommendation := strategy.Recommend(risk.WeightedScore(p.Holdings), s.now())
	return &recommendation, nil
}

// AddTransaction records a buy or sell against one of the user's holdings.
// Amount defaults to quantity × price.
func (s *PortfolioService) AddTransaction(userID int64, tx domain.Transaction) (*domain.Transaction, error) {
	if tx.Type != domain.TransactionBuy && tx.Type != domain.TransactionSell {
		return nil, fmt.Errorf("%w: type must be buy or sell", ErrInvalidInput)
	}
	if tx.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if !finite(tx.Price) || tx.Price < 0 || !finite(tx.Amount) || tx.Amount < 0 {
		return nil, fmt.Errorf("%w: price and amount must be finite and non-negative", ErrInvalidInput)
	}

	h, err := s.holdings.GetByID(tx.HoldingID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrHoldingNotFound
	}
	if _, err := s.owned(userID, h.PortfolioID); err != nil {
		return nil, ErrHoldingNotFound
	}

	tx.UserID = userID
	tx.CreatedAt = s.now()
	if tx.Amount == 0 {
		tx.Amount = float64(tx.Quantity) * tx.Price
		if !finite(tx.Amount) {
			return nil, fmt.Errorf("%w: amount overflows", ErrInvalidInput)
		}
	}

	id, err := s.transactions.Create(tx)
	if err != nil {
		return nil, err
	}
	tx.ID = id
	return &tx, nil
}

// Transactions lists a user's transactions, optionally for one holding
func (s *PortfolioService) Transactions(userID, holdingID int64) ([]domain.Transaction, error) {
	return s.transactions.ListByUser(userID, holdingID)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
