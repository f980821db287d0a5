package testing

import (
	"database/sql"
	"testing"
	"time"

	"github.com/aristath/finsight/internal/domain"
)

// NewHoldingFixtures returns a diversified set of holdings: two stocks, a fund,
// a bond and cash. The stock 600519 is up more than 50% on cost.
func NewHoldingFixtures() []domain.Holding {
	bought := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 6, 28, 15, 0, 0, 0, time.UTC)
	return []domain.Holding{
		{
			Symbol:       "600519",
			Name:         "贵州茅台",
			Category:     domain.CategoryStock,
			Quantity:     10,
			CostPrice:    1000.0,
			CurrentPrice: 1600.0, // ratio 1.6
			PurchaseDate: bought,
			LastUpdated:  updated,
		},
		{
			Symbol:       "000001",
			Name:         "平安银行",
			Category:     domain.CategoryStock,
			Quantity:     1000,
			CostPrice:    12.0,
			CurrentPrice: 10.5,
			PurchaseDate: bought,
			LastUpdated:  updated,
		},
		{
			Symbol:       "510300",
			Name:         "沪深300ETF",
			Category:     domain.CategoryFund,
			Quantity:     2000,
			CostPrice:    3.8,
			CurrentPrice: 3.9,
			PurchaseDate: bought,
			LastUpdated:  updated,
		},
		{
			Symbol:       "019666",
			Name:         "22国债01",
			Category:     domain.CategoryBond,
			Quantity:     50,
			CostPrice:    100.0,
			CurrentPrice: 101.0,
			PurchaseDate: bought,
			LastUpdated:  updated,
		},
		{
			Symbol:       "CASH",
			Name:         "现金",
			Category:     domain.CategoryCash,
			Quantity:     5000,
			CostPrice:    1.0,
			CurrentPrice: 1.0,
			PurchaseDate: bought,
			LastUpdated:  updated,
		},
	}
}

// NewGoalFixtures returns goals relative to now: one on track, one expired
func NewGoalFixtures(now time.Time) []domain.Goal {
	return []domain.Goal{
		{
			Name:          "首付",
			TargetAmount:  300000,
			CurrentAmount: 120000,
			Deadline:      now.AddDate(2, 0, 0),
			RiskTolerance: domain.ToleranceBalanced,
		},
		{
			Name:          "旅行",
			TargetAmount:  20000,
			CurrentAmount: 5000,
			Deadline:      now.AddDate(0, 0, -10),
			RiskTolerance: domain.ToleranceConservative,
		},
	}
}

// InsertUser stores a user row and returns its id
func InsertUser(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO users (name, experience, created_at) VALUES (?, ?, ?)`,
		name, "beginner", time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read user id: %v", err)
	}
	return id
}
