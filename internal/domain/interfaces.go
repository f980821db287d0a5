package domain

import (
	"context"
	"time"
)

// QuoteProvider supplies real-time quotes for securities and market indices
type QuoteProvider interface {
	// Quote returns the latest quote for a six-digit A-share symbol
	Quote(ctx context.Context, symbol string) (*Quote, error)

	// Index returns the latest quote for an exchange-prefixed index code (e.g. sh000001)
	Index(ctx context.Context, code string) (*Quote, error)
}

// FundamentalsProvider supplies listings, company profiles, financial
// statements and price history
type FundamentalsProvider interface {
	// FinancialIndicators returns the indicator table for one reporting period (YYYYMMDD)
	FinancialIndicators(ctx context.Context, symbol, period string) (*FinancialIndicators, error)

	// DailyBars returns daily OHLCV bars between start and end, oldest first
	DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]DailyBar, error)

	// StockBasics returns the listed securities of one exchange (SSE, SZSE) or all when empty
	StockBasics(ctx context.Context, exchange string) ([]StockBasic, error)

	// CompanyInfo returns the merged listing and company profile of a symbol
	CompanyInfo(ctx context.Context, symbol string) (*CompanyInfo, error)
}

// LLMClient turns a chat transcript into free-text commentary.
// The reply is never parsed.
type LLMClient interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}
