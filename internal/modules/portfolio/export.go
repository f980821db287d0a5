package portfolio

import (
	"fmt"
	"time"

	"github.com/gocarina/gocsv"
)

// holdingRow is the CSV shape of a holding, derived values included
type holdingRow struct {
	Symbol       string  `csv:"symbol"`
	Name         string  `csv:"name"`
	Category     string  `csv:"category"`
	Quantity     int64   `csv:"quantity"`
	CostPrice    float64 `csv:"cost_price"`
	CurrentPrice float64 `csv:"current_price"`
	MarketValue  float64 `csv:"market_value"`
	Profit       float64 `csv:"profit"`
	ProfitRate   float64 `csv:"profit_rate"`
	PurchaseDate string  `csv:"purchase_date"`
}

// ExportHoldingsCSV renders a portfolio's holdings as CSV
func (s *PortfolioService) ExportHoldingsCSV(userID, portfolioID int64) ([]byte, error) {
	holdings, err := s.Holdings(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	rows := make([]holdingRow, 0, len(holdings))
	for _, h := range holdings {
		rows = append(rows, holdingRow{
			Symbol:       h.Symbol,
			Name:         h.Name,
			Category:     string(h.Category),
			Quantity:     h.Quantity,
			CostPrice:    h.CostPrice,
			CurrentPrice: h.CurrentPrice,
			MarketValue:  h.MarketValue(),
			Profit:       h.Profit(),
			ProfitRate:   h.ProfitRate(),
			PurchaseDate: h.PurchaseDate.Format("2006-01-02"),
		})
	}

	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal holdings csv: %w", err)
	}
	return out, nil
}

// ExportTransactionsCSV renders a user's transactions as CSV
func (s *PortfolioService) ExportTransactionsCSV(userID int64) ([]byte, error) {
	transactions, err := s.Transactions(userID, 0)
	if err != nil {
		return nil, err
	}

	out, err := gocsv.MarshalBytes(&transactions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transactions csv: %w", err)
	}
	return out, nil
}

// ExportFilename builds a dated download name such as holdings-3-20240601.csv
func ExportFilename(kind string, id int64, at time.Time) string {
	if id > 0 {
		return fmt.Sprintf("%s-%d-%s.csv", kind, id, at.Format("20060102"))
	}
	return fmt.Sprintf("%s-%s.csv", kind, at.Format("20060102"))
}
