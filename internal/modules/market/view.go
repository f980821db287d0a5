package market

import "github.com/aristath/finsight/internal/domain"

// OverviewView is an Overview with its sentiment rendered
type OverviewView struct {
	Overview
	SentimentLabel string `json:"market_sentiment_label"`
}

// DescribeOverview renders an overview with the given labels
func DescribeOverview(o Overview, labels domain.Labels) OverviewView {
	return OverviewView{Overview: o, SentimentLabel: labels.Sentiment(o.Sentiment)}
}

// SignalView is a technical signal with its description
type SignalView struct {
	Kind    domain.TechnicalSignal `json:"kind"`
	Message string                 `json:"message"`
}

// TechnicalView is a TechnicalAnalysis rendered for display
type TechnicalView struct {
	TechnicalAnalysis
	TrendLabel  string       `json:"trend_label"`
	SignalViews []SignalView `json:"signal_messages"`
	Commentary  string       `json:"commentary,omitempty"`
}

// DescribeTechnical renders an analysis with the given labels
func DescribeTechnical(a TechnicalAnalysis, labels domain.Labels) TechnicalView {
	view := TechnicalView{
		TechnicalAnalysis: a,
		TrendLabel:        labels.Trend(a.Trend),
		SignalViews:       make([]SignalView, 0, len(a.Signals)),
	}
	for _, s := range a.Signals {
		view.SignalViews = append(view.SignalViews, SignalView{Kind: s, Message: labels.Signal(s)})
	}
	return view
}
