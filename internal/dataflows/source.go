// Package dataflows supplies market data to the agents: feature vectors,
// expected and historical returns, and current prices. Sources are pure
// inputs; agents never write through them.
package dataflows

import (
	"context"

	"github.com/shopspring/decimal"
)

// FeatureDim is the width of the feature vector handed to the agents.
const FeatureDim = 50

// MarketDataSource is the pricing collaborator consumed by the agents.
// Implementations may be simulated or live; both are side-effect free from
// the caller's point of view.
type MarketDataSource interface {
	// Features returns a FeatureDim-wide market feature vector for the
	// given assets.
	Features(ctx context.Context, assets []string) ([]float64, error)

	// ExpectedReturns returns the annualized expected return per asset.
	ExpectedReturns(ctx context.Context, assets []string) (map[string]float64, error)

	// HistoricalReturns returns a series of daily returns for one asset,
	// newest last.
	HistoricalReturns(ctx context.Context, asset string, days int) ([]float64, error)

	// Price returns the current price for one asset.
	Price(ctx context.Context, asset string) (decimal.Decimal, error)
}
