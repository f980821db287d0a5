package clientdata

import "time"

// Retention windows for last-known provider responses.
// Clients always query upstream first; a stored copy is only served when the
// live call fails, and the cleanup job drops rows once their window passes.
const (
	// Quarterly financial data (updates with filings)
	TTLIndicators = 7 * 24 * time.Hour

	// Daily bars only change after the close
	TTLDailyBars = 3 * 24 * time.Hour

	// Listings and company profiles rarely change
	TTLStockList = 7 * 24 * time.Hour
	TTLCompany   = 30 * 24 * time.Hour

	// Intraday quotes are worth little after the trading day
	TTLQuote = 24 * time.Hour
	TTLIndex = 24 * time.Hour
)
