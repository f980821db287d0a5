package testing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/aristath/finsight/internal/domain"
)

// ErrNoData is returned by mocks when nothing was configured for a key
var ErrNoData = errors.New("no data configured")

// MockQuoteProvider is a mock implementation of domain.QuoteProvider for testing
type MockQuoteProvider struct {
	mu      sync.RWMutex
	quotes  map[string]domain.Quote
	indices map[string]domain.Quote
	err     error
	calls   int
}

// NewMockQuoteProvider creates a new mock quote provider
func NewMockQuoteProvider() *MockQuoteProvider {
	return &MockQuoteProvider{
		quotes:  make(map[string]domain.Quote),
		indices: make(map[string]domain.Quote),
	}
}

// SetQuote sets the quote returned for a symbol
func (m *MockQuoteProvider) SetQuote(q domain.Quote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[q.Symbol] = q
}

// SetIndex sets the quote returned for an index code
func (m *MockQuoteProvider) SetIndex(code string, q domain.Quote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indices[code] = q
}

// SetError sets the error to return from every call
func (m *MockQuoteProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many lookups were made
func (m *MockQuoteProvider) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Quote returns the configured quote for symbol
func (m *MockQuoteProvider) Quote(_ context.Context, symbol string) (*domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	q, ok := m.quotes[symbol]
	if !ok {
		return nil, ErrNoData
	}
	return &q, nil
}

// Index returns the configured quote for an index code
func (m *MockQuoteProvider) Index(_ context.Context, code string) (*domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	q, ok := m.indices[code]
	if !ok {
		return nil, ErrNoData
	}
	return &q, nil
}

// MockFundamentalsProvider is a mock implementation of domain.FundamentalsProvider for testing
type MockFundamentalsProvider struct {
	mu         sync.RWMutex
	indicators map[string]*domain.FinancialIndicators
	bars       map[string][]domain.DailyBar
	stocks     []domain.StockBasic
	companies  map[string]*domain.CompanyInfo
	err        error
}

// NewMockFundamentalsProvider creates a new mock fundamentals provider
func NewMockFundamentalsProvider() *MockFundamentalsProvider {
	return &MockFundamentalsProvider{
		indicators: make(map[string]*domain.FinancialIndicators),
		bars:       make(map[string][]domain.DailyBar),
		companies:  make(map[string]*domain.CompanyInfo),
	}
}

// SetIndicators sets the indicator table returned for a symbol
func (m *MockFundamentalsProvider) SetIndicators(symbol string, fi *domain.FinancialIndicators) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indicators[symbol] = fi
}

// SetBars sets the daily bars returned for a symbol
func (m *MockFundamentalsProvider) SetBars(symbol string, bars []domain.DailyBar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bars[symbol] = bars
}

// SetError sets the error to return from every call
func (m *MockFundamentalsProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// FinancialIndicators returns the configured table for symbol
func (m *MockFundamentalsProvider) FinancialIndicators(_ context.Context, symbol, _ string) (*domain.FinancialIndicators, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	fi, ok := m.indicators[symbol]
	if !ok {
		return nil, ErrNoData
	}
	return fi, nil
}

// DailyBars returns the configured bars for symbol, ignoring the range
func (m *MockFundamentalsProvider) DailyBars(_ context.Context, symbol string, _, _ time.Time) ([]domain.DailyBar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.bars[symbol], nil
}

// SetStocks sets the listing returned by StockBasics
func (m *MockFundamentalsProvider) SetStocks(stocks []domain.StockBasic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stocks = stocks
}

// SetCompany sets the company profile returned for a symbol
func (m *MockFundamentalsProvider) SetCompany(symbol string, info *domain.CompanyInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[symbol] = info
}

// StockBasics returns the configured listing, filtered by the ts_code suffix
// of the exchange (SSE -> .SH, SZSE -> .SZ)
func (m *MockFundamentalsProvider) StockBasics(_ context.Context, exchange string) ([]domain.StockBasic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	suffix := map[string]string{"SSE": ".SH", "SZSE": ".SZ"}[exchange]
	out := make([]domain.StockBasic, 0, len(m.stocks))
	for _, s := range m.stocks {
		if suffix == "" || strings.HasSuffix(s.TSCode, suffix) {
			out = append(out, s)
		}
	}
	return out, nil
}

// CompanyInfo returns the configured profile for symbol
func (m *MockFundamentalsProvider) CompanyInfo(_ context.Context, symbol string) (*domain.CompanyInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	info, ok := m.companies[symbol]
	if !ok {
		return nil, ErrNoData
	}
	return info, nil
}

// MockLLMClient is a mock implementation of domain.LLMClient for testing.
// It records every transcript it receives.
type MockLLMClient struct {
	mu       sync.RWMutex
	reply    string
	err      error
	received [][]domain.ChatMessage
}

// NewMockLLMClient creates a mock that answers every call with reply
func NewMockLLMClient(reply string) *MockLLMClient {
	return &MockLLMClient{reply: reply}
}

// SetError sets the error to return
func (m *MockLLMClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Received returns the transcripts passed to Complete
func (m *MockLLMClient) Received() [][]domain.ChatMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.received
}

// LastPrompt returns the content of the last message of the last call
func (m *MockLLMClient) LastPrompt() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.received) == 0 {
		return ""
	}
	last := m.received[len(m.received)-1]
	if len(last) == 0 {
		return ""
	}
	return last[len(last)-1].Content
}

// Complete records the transcript and returns the configured reply
func (m *MockLLMClient) Complete(_ context.Context, messages []domain.ChatMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]domain.ChatMessage, len(messages))
	copy(copied, messages)
	m.received = append(m.received, copied)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}
