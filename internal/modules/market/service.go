// Package market provides the market overview, quote lookups and technical
// analysis built on the quote and daily bar providers.
package market

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/pkg/formulas"
)

// Headline index codes summarised by the overview
const (
	IndexShanghai = "sh000001"
	IndexShenzhen = "sz399001"
	IndexChiNext  = "sz399006"
)

// NotAvailable is shown for an index that could not be fetched
const NotAvailable = "N/A"

// sentimentThreshold is the mean percentage change beyond which the market is
// considered optimistic or pessimistic
const sentimentThreshold = 1.0

// Errors returned by the service
var (
	ErrInvalidSymbol   = errors.New("symbol must be a six-digit A-share code")
	ErrInvalidExchange = errors.New("exchange must be SSE or SZSE")
	ErrUnavailable     = errors.New("market data unavailable")
)

// DefaultStockLimit caps a stock search when no limit is given
const DefaultStockLimit = 50

var symbolPattern = regexp.MustCompile(`^[0-9]{6}$`)

// Overview summarises the three headline indices
type Overview struct {
	Shanghai  string           `json:"sh_index"`
	Shenzhen  string           `json:"sz_index"`
	ChiNext   string           `json:"cyb_index"`
	Sentiment domain.Sentiment `json:"market_sentiment"`
	Indices   []domain.Quote   `json:"indices"`
	AsOf      time.Time        `json:"as_of"`
}

// Service answers market queries
type Service struct {
	quotes domain.QuoteProvider
	bars   domain.FundamentalsProvider
	llm    domain.LLMClient
	log    zerolog.Logger
	now    func() time.Time
}

// NewService creates a market service. Any collaborator may be nil; the
// operations that need it then report ErrUnavailable.
func NewService(quotes domain.QuoteProvider, bars domain.FundamentalsProvider, llm domain.LLMClient, log zerolog.Logger) *Service {
	return &Service{
		quotes: quotes,
		bars:   bars,
		llm:    llm,
		log:    log.With().Str("service", "market").Logger(),
		now:    time.Now,
	}
}

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ValidateSymbol checks the six-digit A-share form
func ValidateSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return nil
}

// Quote returns the latest quote for symbol
func (s *Service) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if s.quotes == nil {
		return nil, ErrUnavailable
	}
	q, err := s.quotes.Quote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return q, nil
}

// Index returns the latest level of an index code
func (s *Service) Index(ctx context.Context, code string) (*domain.Quote, error) {
	if s.quotes == nil {
		return nil, ErrUnavailable
	}
	q, err := s.quotes.Index(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return q, nil
}

// Stocks searches the listing of exchange (SSE, SZSE or both when empty).
// query matches symbol, ts_code, name or industry as a case-insensitive
// substring; an empty query matches everything. At most limit rows are
// returned in listing order, DefaultStockLimit when limit is not positive.
func (s *Service) Stocks(ctx context.Context, query, exchange string, limit int) ([]domain.StockBasic, error) {
	exchange = strings.ToUpper(strings.TrimSpace(exchange))
	if exchange != "" && exchange != "SSE" && exchange != "SZSE" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExchange, exchange)
	}
	if s.bars == nil {
		return nil, ErrUnavailable
	}
	if limit <= 0 {
		limit = DefaultStockLimit
	}

	listing, err := s.bars.StockBasics(ctx, exchange)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	matches := []domain.StockBasic{}
	for _, stock := range listing {
		if len(matches) == limit {
			break
		}
		if query == "" || stockMatches(stock, query) {
			matches = append(matches, stock)
		}
	}
	return matches, nil
}

func stockMatches(stock domain.StockBasic, query string) bool {
	for _, field := range []string{stock.Symbol, stock.TSCode, stock.Name, stock.Industry} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// Overview fetches the headline indices and derives the market sentiment.
// A failed index renders as N/A and forces a neutral sentiment; when every
// index fails the sentiment is unavailable.
func (s *Service) Overview(ctx context.Context) Overview {
	codes := []string{IndexShanghai, IndexShenzhen, IndexChiNext}
	summaries := make([]string, len(codes))
	changes := make([]float64, 0, len(codes))

	ov := Overview{Indices: []domain.Quote{}, AsOf: s.now().UTC()}
	for i, code := range codes {
		q, err := s.Index(ctx, code)
		if err != nil || q == nil {
			s.log.Warn().Err(err).Str("index", code).Msg("Failed to fetch index")
			summaries[i] = NotAvailable
			continue
		}
		summaries[i] = fmt.Sprintf("%.2f (%.2f%%)", q.Current, q.ChangePercent)
		changes = append(changes, q.ChangePercent)
		ov.Indices = append(ov.Indices, *q)
	}

	ov.Shanghai, ov.Shenzhen, ov.ChiNext = summaries[0], summaries[1], summaries[2]

	switch len(changes) {
	case 0:
		ov.Sentiment = domain.SentimentUnavailable
	case len(codes):
		ov.Sentiment = Sentiment(changes)
	default:
		ov.Sentiment = domain.SentimentNeutral
	}
	return ov
}

// Sentiment classifies the unweighted mean of percentage changes with ±1% thresholds
func Sentiment(changes []float64) domain.Sentiment {
	if len(changes) == 0 {
		return domain.SentimentNeutral
	}
	avg := formulas.Mean(changes)
	switch {
	case avg > sentimentThreshold:
		return domain.SentimentOptimistic
	case avg < -sentimentThreshold:
		return domain.SentimentPessimistic
	default:
		return domain.SentimentNeutral
	}
}
