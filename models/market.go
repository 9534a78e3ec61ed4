package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketData represents one quote or daily bar for an asset.
type MarketData struct {
	Symbol    string          `json:"symbol"`
	Date      time.Time       `json:"date"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

// AssetRisk holds the per-asset risk numbers produced by risk analysis.
type AssetRisk struct {
	VaR95       float64 `json:"var_95"`
	CVaR95      float64 `json:"cvar_95"`
	Volatility  float64 `json:"volatility"`
	SharpeRatio float64 `json:"sharpe_ratio"`
}

// YieldPrediction is one strategy's predicted outcome.
type YieldPrediction struct {
	ExpectedAnnualYield float64            `json:"expected_annual_yield"`
	Allocations         map[string]float64 `json:"allocations"`
	Confidence          float64            `json:"confidence"`
	RiskAdjustedReturn  float64            `json:"risk_adjusted_return"`
}

// NewsHeadline is a scraped headline used for sentiment scoring.
type NewsHeadline struct {
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
}
