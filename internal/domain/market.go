package domain

import "time"

// Quote is a point-in-time price snapshot for a security or index
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Open          float64   `json:"open"`
	PrevClose     float64   `json:"prev_close"`
	Current       float64   `json:"current"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Volume        float64   `json:"volume"`
	Amount        float64   `json:"amount"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// IndicatorRow is one reported period of financial indicators. A nil value
// means the provider reported nothing usable (empty, zero or infinite).
type IndicatorRow struct {
	TSCode  string              `json:"ts_code"`
	AnnDate string              `json:"ann_date"`
	EndDate string              `json:"end_date"`
	Values  map[string]*float64 `json:"values"`
}

// FinancialIndicators is the indicator table returned for a symbol and period
type FinancialIndicators struct {
	Symbol         string         `json:"symbol"`
	Period         string         `json:"period"`
	Columns        []string       `json:"columns"`
	Rows           []IndicatorRow `json:"rows"`
	MissingColumns []string       `json:"missing_columns,omitempty"`
}

// Latest returns the first row, which the provider orders newest first
func (f *FinancialIndicators) Latest() *IndicatorRow {
	if f == nil || len(f.Rows) == 0 {
		return nil
	}
	return &f.Rows[0]
}

// StockBasic is one listed security from the exchange listing
type StockBasic struct {
	TSCode   string `json:"ts_code"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Area     string `json:"area"`
	Industry string `json:"industry"`
	Market   string `json:"market"`
	ListDate string `json:"list_date"`
}

// CompanyInfo merges a security's listing row with its company profile.
// RegCapital is in units of 10,000 CNY, as reported.
type CompanyInfo struct {
	TSCode        string  `json:"ts_code"`
	Name          string  `json:"name"`
	ListDate      string  `json:"list_date"`
	Industry      string  `json:"industry"`
	RegCapital    float64 `json:"reg_capital"`
	Chairman      string  `json:"chairman"`
	Introduction  string  `json:"introduction"`
	MainBusiness  string  `json:"main_business"`
	BusinessScope string  `json:"business_scope"`
	Province      string  `json:"province"`
	City          string  `json:"city"`
	Website       string  `json:"website"`
	Employees     int64   `json:"employees"`
}

// DailyBar is one trading day of price history
type DailyBar struct {
	TradeDate time.Time `json:"trade_date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Amount    float64   `json:"amount"`
}

// ChatRole is the author of a chat message
type ChatRole string

// Chat roles
const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of an LLM transcript
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Sentiment is the market mood derived from the headline indices
type Sentiment string

// Sentiment values
const (
	SentimentOptimistic  Sentiment = "optimistic"
	SentimentNeutral     Sentiment = "neutral"
	SentimentPessimistic Sentiment = "pessimistic"
	SentimentUnavailable Sentiment = "unavailable"
)

// Trend is the moving-average alignment of a price series
type Trend string

// Trend values
const (
	TrendBullish  Trend = "bullish"  // close > MA5 > MA10 > MA20
	TrendBearish  Trend = "bearish"  // close < MA5 < MA10 < MA20
	TrendSideways Trend = "sideways" // anything else
)

// TechnicalSignal is a discrete indicator event
type TechnicalSignal string

// Technical signals
const (
	SignalGoldenCross TechnicalSignal = "macd_golden_cross"
	SignalDeathCross  TechnicalSignal = "macd_death_cross"
	SignalOverbought  TechnicalSignal = "rsi_overbought"
	SignalOversold    TechnicalSignal = "rsi_oversold"
)
