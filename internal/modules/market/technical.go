package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/pkg/formulas"
)

// Indicator windows
const (
	lookbackDays = 365
	macdFast     = 12
	macdSlow     = 26
	macdSignal   = 9
	rsiPeriod    = 14
	rsiHigh      = 70.0
	rsiLow       = 30.0
)

// ErrInsufficientHistory is returned when there are fewer bars than the longest moving average
var ErrInsufficientHistory = errors.New("not enough price history")

// TechnicalAnalysis holds the latest indicator values for a symbol
type TechnicalAnalysis struct {
	Symbol  string                   `json:"symbol"`
	AsOf    time.Time                `json:"as_of"`
	Bars    int                      `json:"bars"`
	Close   float64                  `json:"close"`
	MA5     float64                  `json:"ma5"`
	MA10    float64                  `json:"ma10"`
	MA20    float64                  `json:"ma20"`
	MACD    *formulas.MACD           `json:"macd,omitempty"`
	RSI     *float64                 `json:"rsi,omitempty"`
	Trend   domain.Trend             `json:"trend"`
	Signals []domain.TechnicalSignal `json:"signals"`
}

// Technical loads a year of daily bars and computes MA5/10/20, MACD(12,26,9) and RSI(14)
func (s *Service) Technical(ctx context.Context, symbol string) (*TechnicalAnalysis, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if s.bars == nil {
		return nil, ErrUnavailable
	}

	end := s.now()
	bars, err := s.bars.DailyBars(ctx, symbol, end.AddDate(0, 0, -lookbackDays), end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	analysis, err := Analyze(symbol, bars)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("symbol", symbol).
		Int("bars", analysis.Bars).
		Str("trend", string(analysis.Trend)).
		Msg("Technical analysis computed")
	return analysis, nil
}

// Analyze computes indicators from bars sorted oldest first
func Analyze(symbol string, bars []domain.DailyBar) (*TechnicalAnalysis, error) {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	ma5 := formulas.CalculateSMA(closes, 5)
	ma10 := formulas.CalculateSMA(closes, 10)
	ma20 := formulas.CalculateSMA(closes, 20)
	if ma5 == nil || ma10 == nil || ma20 == nil {
		return nil, fmt.Errorf("%w: %d bars", ErrInsufficientHistory, len(bars))
	}

	a := &TechnicalAnalysis{
		Symbol:  symbol,
		AsOf:    bars[len(bars)-1].TradeDate,
		Bars:    len(bars),
		Close:   closes[len(closes)-1],
		MA5:     *ma5,
		MA10:    *ma10,
		MA20:    *ma20,
		MACD:    formulas.CalculateMACD(closes, macdFast, macdSlow, macdSignal),
		RSI:     formulas.CalculateRSI(closes, rsiPeriod),
		Signals: []domain.TechnicalSignal{},
	}

	switch {
	case a.Close > a.MA5 && a.MA5 > a.MA10 && a.MA10 > a.MA20:
		a.Trend = domain.TrendBullish
	case a.Close < a.MA5 && a.MA5 < a.MA10 && a.MA10 < a.MA20:
		a.Trend = domain.TrendBearish
	default:
		a.Trend = domain.TrendSideways
	}

	if m := a.MACD; m != nil {
		if m.MACD > m.Signal && m.MACD > 0 {
			a.Signals = append(a.Signals, domain.SignalGoldenCross)
		} else if m.MACD < m.Signal && m.MACD < 0 {
			a.Signals = append(a.Signals, domain.SignalDeathCross)
		}
	}

	if a.RSI != nil {
		if *a.RSI > rsiHigh {
			a.Signals = append(a.Signals, domain.SignalOverbought)
		} else if *a.RSI < rsiLow {
			a.Signals = append(a.Signals, domain.SignalOversold)
		}
	}

	return a, nil
}

// TechnicalCommentary asks the LLM to interpret an analysis
func (s *Service) TechnicalCommentary(ctx context.Context, a *TechnicalAnalysis) (string, error) {
	if s.llm == nil {
		return "", ErrUnavailable
	}
	reply, err := s.llm.Complete(ctx, []domain.ChatMessage{
		{Role: domain.RoleUser, Content: TechnicalPrompt(a)},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return reply, nil
}

// TechnicalPrompt renders the indicator values as an analysis request
func TechnicalPrompt(a *TechnicalAnalysis) string {
	var sb strings.Builder
	sb.WriteString("请基于以下技术指标数据进行分析：\n\n")
	fmt.Fprintf(&sb, "股票代码：%s\n", a.Symbol)
	fmt.Fprintf(&sb, "当前价格：%.2f\n", a.Close)
	sb.WriteString("移动平均线：\n")
	fmt.Fprintf(&sb, "- MA5：%.2f\n- MA10：%.2f\n- MA20：%.2f\n\n", a.MA5, a.MA10, a.MA20)

	sb.WriteString("MACD指标：\n")
	if a.MACD != nil {
		fmt.Fprintf(&sb, "- MACD：%.2f\n- Signal：%.2f\n\n", a.MACD.MACD, a.MACD.Signal)
	} else {
		sb.WriteString("- 数据不足\n\n")
	}

	sb.WriteString("RSI指标：\n")
	if a.RSI != nil {
		fmt.Fprintf(&sb, "- RSI：%.2f\n\n", *a.RSI)
	} else {
		sb.WriteString("- 数据不足\n\n")
	}

	sb.WriteString(`请从以下几个方面进行分析：
1. 趋势分析（基于移动平均线）
2. 动量分析（基于MACD）
3. 超买超卖分析（基于RSI）
4. 综合技术面分析
5. 具体的交易建议和风险提示

注意：请用专业、客观的语气进行分析，并提供具体的建议。`)
	return sb.String()
}
