package market

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/finsight/internal/domain"
	testingutil "github.com/aristath/finsight/internal/testing"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func barsFrom(closes func(i int) float64, n int) []domain.DailyBar {
	bars := make([]domain.DailyBar, n)
	for i := range bars {
		c := closes(i)
		bars[i] = domain.DailyBar{TradeDate: day0.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return bars
}

func TestAnalyze_Bullish(t *testing.T) {
	bars := barsFrom(func(i int) float64 { return 10 + float64(i*i)*0.01 }, 60)

	a, err := Analyze("600519", bars)
	require.NoError(t, err)

	assert.Equal(t, domain.TrendBullish, a.Trend)
	assert.Equal(t, 60, a.Bars)
	assert.True(t, a.AsOf.Equal(bars[59].TradeDate))
	require.NotNil(t, a.MACD)
	require.NotNil(t, a.RSI)
	assert.Equal(t, []domain.TechnicalSignal{domain.SignalGoldenCross, domain.SignalOverbought}, a.Signals)
	assert.Greater(t, a.MA5, a.MA10)
	assert.Greater(t, a.MA10, a.MA20)
}

func TestAnalyze_Bearish(t *testing.T) {
	bars := barsFrom(func(i int) float64 { return 100 - float64(i*i)*0.01 }, 60)

	a, err := Analyze("000001", bars)
	require.NoError(t, err)

	assert.Equal(t, domain.TrendBearish, a.Trend)
	assert.Equal(t, []domain.TechnicalSignal{domain.SignalDeathCross, domain.SignalOversold}, a.Signals)
}

func TestAnalyze_SidewaysShortHistory(t *testing.T) {
	bars := barsFrom(func(i int) float64 { return 10 + float64(i%2) }, 25)

	a, err := Analyze("000001", bars)
	require.NoError(t, err)

	assert.Equal(t, domain.TrendSideways, a.Trend)
	assert.Nil(t, a.MACD)
	assert.Empty(t, a.Signals)

	prompt := TechnicalPrompt(a)
	assert.Contains(t, prompt, "股票代码：000001")
	assert.Contains(t, prompt, "数据不足")
}

func TestAnalyze_InsufficientHistory(t *testing.T) {
	_, err := Analyze("000001", barsFrom(func(int) float64 { return 10 }, 19))
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	_, err = Analyze("000001", nil)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestTechnicalAndCommentary(t *testing.T) {
	bars := testingutil.NewMockFundamentalsProvider()
	bars.SetBars("600519", barsFrom(func(i int) float64 { return 10 + float64(i*i)*0.01 }, 60))
	llm := testingutil.NewMockLLMClient("趋势向上")

	svc := NewService(nil, bars, llm, zerolog.Nop())
	a, err := svc.Technical(context.Background(), "600519")
	require.NoError(t, err)

	reply, err := svc.TechnicalCommentary(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "趋势向上", reply)
	assert.Contains(t, llm.LastPrompt(), "MA20")
	assert.Equal(t, domain.RoleUser, llm.Received()[0][0].Role)

	view := DescribeTechnical(*a, domain.NewLabels("en"))
	assert.Contains(t, view.TrendLabel, "Bullish")
	require.Len(t, view.SignalViews, 2)
	assert.Equal(t, "MACD golden cross: buy signal", view.SignalViews[0].Message)
}

func TestTechnical_Errors(t *testing.T) {
	svc := NewService(nil, nil, nil, zerolog.Nop())

	_, err := svc.Technical(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrInvalidSymbol)

	_, err = svc.Technical(context.Background(), "600519")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = svc.TechnicalCommentary(context.Background(), &TechnicalAnalysis{})
	assert.ErrorIs(t, err, ErrUnavailable)
}
