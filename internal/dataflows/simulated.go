package dataflows

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
)

// Baseline prices used when no live source is configured. Unlisted assets
// fall back to 100.
var simulatedPrices = map[string]float64{
	"ETH":  2500.0,
	"USDC": 1.0,
	"AAVE": 120.0,
	"UNI":  8.5,
}

// SimulatedSource generates market data from a seeded generator. Expected
// returns are drawn from N(0.08, 0.15) annualized, daily returns from
// N(0.0008, 0.02). Runs with the same seed produce the same stream.
type SimulatedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedSource(seed int64) *SimulatedSource {
	return &SimulatedSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *SimulatedSource) Features(ctx context.Context, assets []string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	features := make([]float64, FeatureDim)
	for i := range features {
		features[i] = s.rng.NormFloat64()
	}
	return features, nil
}

func (s *SimulatedSource) ExpectedReturns(ctx context.Context, assets []string) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	returns := make(map[string]float64, len(assets))
	for _, asset := range assets {
		returns[asset] = s.rng.NormFloat64()*0.15 + 0.08
	}
	return returns, nil
}

func (s *SimulatedSource) HistoricalReturns(ctx context.Context, asset string, days int) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", days)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	series := make([]float64, days)
	for i := range series {
		series[i] = s.rng.NormFloat64()*0.02 + 0.0008
	}
	return series, nil
}

func (s *SimulatedSource) Price(ctx context.Context, asset string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	if price, ok := simulatedPrices[asset]; ok {
		return decimal.NewFromFloat(price), nil
	}
	return decimal.NewFromInt(100), nil
}
