// Package advisor runs the chat advisor and the explain-my-risk commentary.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/portfolio"
	"github.com/aristath/finsight/internal/modules/risk"
)

var (
	// ErrSessionNotFound is returned for unknown chat session ids
	ErrSessionNotFound = errors.New("chat session not found")
	// ErrEmptyMessage is returned when the user sends nothing
	ErrEmptyMessage = errors.New("message is empty")
	// ErrUnavailable wraps LLM failures
	ErrUnavailable = errors.New("advisor unavailable")
)

// Portfolios is the part of the portfolio service the advisor reads
type Portfolios interface {
	Portfolio(userID, portfolioID int64) (*domain.Portfolio, error)
	Metrics(userID, portfolioID int64) (*portfolio.MetricsView, error)
	Assess(userID, portfolioID int64) (*domain.RiskAssessment, error)
}

// Reply is the outcome of one chat turn
type Reply struct {
	SessionID string               `json:"session_id"`
	Reply     string               `json:"reply"`
	Messages  []domain.ChatMessage `json:"messages"`
}

// RiskCommentary is the LLM explanation of a portfolio's risk
type RiskCommentary struct {
	PortfolioID int64                  `json:"portfolio_id"`
	Metrics     *portfolio.MetricsView `json:"metrics"`
	Assessment  risk.AssessmentView    `json:"assessment"`
	Commentary  string                 `json:"commentary"`
}

// Service talks to the LLM on behalf of users
type Service struct {
	store      *Store
	llm        domain.LLMClient
	portfolios Portfolios
	labels     domain.Labels
	log        zerolog.Logger
}

// NewService creates a new advisor service
func NewService(store *Store, llm domain.LLMClient, portfolios Portfolios, labels domain.Labels, log zerolog.Logger) *Service {
	return &Service{
		store:      store,
		llm:        llm,
		portfolios: portfolios,
		labels:     labels,
		log:        log.With().Str("service", "advisor").Logger(),
	}
}

// Open starts a new chat session
func (s *Service) Open() Reply {
	id := s.store.Open(s.labels.ChatGreeting())
	messages, _ := s.store.Messages(id)
	return Reply{SessionID: id, Messages: messages}
}

// Chat appends the user's message to the session, asks the LLM with the full
// transcript and appends the reply. An empty sessionID opens a new session.
// The user's message stays in the transcript when the LLM fails.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if sessionID == "" {
		sessionID = s.store.Open(s.labels.ChatGreeting())
	}

	transcript, ok := s.store.Append(sessionID, domain.ChatMessage{Role: domain.RoleUser, Content: message})
	if !ok {
		return nil, ErrSessionNotFound
	}

	answer, err := s.llm.Complete(ctx, transcript)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("Chat completion failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	transcript, ok = s.store.Append(sessionID, domain.ChatMessage{Role: domain.RoleAssistant, Content: answer})
	if !ok {
		// cleared while the LLM was answering
		return nil, ErrSessionNotFound
	}

	return &Reply{SessionID: sessionID, Reply: answer, Messages: transcript}, nil
}

// Transcript returns the messages of a session
func (s *Service) Transcript(sessionID string) ([]domain.ChatMessage, error) {
	messages, ok := s.store.Messages(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return messages, nil
}

// Clear drops a session
func (s *Service) Clear(sessionID string) error {
	if !s.store.Clear(sessionID) {
		return ErrSessionNotFound
	}
	return nil
}

// ExplainRisk asks the LLM to explain a portfolio's computed risk metrics
func (s *Service) ExplainRisk(ctx context.Context, userID, portfolioID int64) (*RiskCommentary, error) {
	p, err := s.portfolios.Portfolio(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	metrics, err := s.portfolios.Metrics(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	assessment, err := s.portfolios.Assess(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	view := risk.Describe(*assessment, s.labels)
	prompt := RiskPrompt(p, metrics, view)

	answer, err := s.llm.Complete(ctx, []domain.ChatMessage{{Role: domain.RoleUser, Content: prompt}})
	if err != nil {
		s.log.Warn().Err(err).Int64("portfolio_id", portfolioID).Msg("Risk commentary failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &RiskCommentary{
		PortfolioID: portfolioID,
		Metrics:     metrics,
		Assessment:  view,
		Commentary:  answer,
	}, nil
}

// RiskPrompt renders the explain-my-risk prompt
func RiskPrompt(p *domain.Portfolio, m *portfolio.MetricsView, a risk.AssessmentView) string {
	var b strings.Builder

	b.WriteString("请基于以下投资组合的风险数据，用通俗的语言向投资者解释其风险状况：\n\n")
	fmt.Fprintf(&b, "投资组合：%s\n", p.Name)
	fmt.Fprintf(&b, "风险承受能力：%s\n", p.RiskTolerance)
	fmt.Fprintf(&b, "投资目标：%s\n\n", p.InvestmentGoal)

	b.WriteString("估值：\n")
	fmt.Fprintf(&b, "- 总市值：¥%.2f\n", m.TotalValue)
	fmt.Fprintf(&b, "- 总成本：¥%.2f\n", m.TotalCost)
	fmt.Fprintf(&b, "- 总收益率：%.2f%%\n", m.TotalReturn*100)
	fmt.Fprintf(&b, "- 持仓数量：%d\n\n", m.HoldingCount)

	b.WriteString("资产配置：\n")
	categories := make([]string, 0, len(m.Allocation))
	for c := range m.Allocation {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(&b, "- %s：%.2f%%\n", c, m.Allocation[domain.Category(c)]*100)
	}

	b.WriteString("\n风险评分：\n")
	fmt.Fprintf(&b, "- 加权风险评分：%.2f\n", m.WeightedScore)
	fmt.Fprintf(&b, "- 波动风险评分：%.2f\n", m.VolatilityScore)
	fmt.Fprintf(&b, "- 风险等级：%s\n", a.LevelLabel)

	if len(a.Factors) > 0 {
		b.WriteString("\n风险因素：\n")
		for _, f := range a.Factors {
			fmt.Fprintf(&b, "- %s\n", f.Message)
		}
	}
	if len(a.Suggestions) > 0 {
		b.WriteString("\n系统建议：\n")
		for _, sg := range a.Suggestions {
			fmt.Fprintf(&b, "- %s\n", sg.Message)
		}
	}

	b.WriteString(`
请从以下几个方面进行说明：
1. 当前风险水平的含义
2. 主要风险来源
3. 与投资者风险承受能力是否匹配
4. 具体的调整建议

注意：请用专业、客观的语气进行分析，并提供具体的建议。
`)
	return b.String()
}
