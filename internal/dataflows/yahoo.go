package dataflows

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

const tradingDaysPerYear = 252

// YahooSource serves live market data from Yahoo Finance. Prices come from
// quotes, return series from daily bars, and the feature vector is derived
// from the recent bar window per asset. Fetches go through the file cache
// first so repeated dispatches within the TTL stay off the network.
type YahooSource struct {
	retry *RetryConfig
	cache *FileCache
}

func NewYahooSource(cache *FileCache) *YahooSource {
	return &YahooSource{
		retry: DefaultRetryConfig(),
		cache: cache,
	}
}

func (y *YahooSource) Price(ctx context.Context, asset string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	var cached float64
	if y.cache.Get("price", asset, &cached) {
		return decimal.NewFromFloat(cached), nil
	}

	var price decimal.Decimal
	err := WithRetry(y.retry, func() error {
		q, err := quote.Get(asset)
		if err != nil {
			return fmt.Errorf("failed to get quote for %s: %w", asset, err)
		}
		price = decimal.NewFromFloat(q.RegularMarketPrice)
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	f, _ := price.Float64()
	if err := y.cache.Set("price", asset, f); err != nil {
		log.Printf("failed to cache price for %s: %v", asset, err)
	}
	return price, nil
}

func (y *YahooSource) HistoricalReturns(ctx context.Context, asset string, days int) ([]float64, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", days)
	}

	closes, err := y.closes(ctx, asset, days+1)
	if err != nil {
		return nil, err
	}
	if len(closes) < 2 {
		return nil, fmt.Errorf("not enough history for %s: %d bars", asset, len(closes))
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	return returns, nil
}

func (y *YahooSource) ExpectedReturns(ctx context.Context, assets []string) (map[string]float64, error) {
	returns := make(map[string]float64, len(assets))
	for _, asset := range assets {
		daily, err := y.HistoricalReturns(ctx, asset, tradingDaysPerYear)
		if err != nil {
			return nil, fmt.Errorf("expected return for %s: %w", asset, err)
		}
		returns[asset] = mean(daily) * tradingDaysPerYear
	}
	return returns, nil
}

// Features builds a FeatureDim-wide vector from each asset's recent
// window: per-asset momentum, volatility and mean return, repeated across
// the remaining slots so the width is stable no matter how many assets the
// caller names.
func (y *YahooSource) Features(ctx context.Context, assets []string) ([]float64, error) {
	if len(assets) == 0 {
		return make([]float64, FeatureDim), nil
	}

	raw := make([]float64, 0, len(assets)*3)
	for _, asset := range assets {
		daily, err := y.HistoricalReturns(ctx, asset, 30)
		if err != nil {
			return nil, fmt.Errorf("features for %s: %w", asset, err)
		}
		m := mean(daily)
		raw = append(raw, momentum(daily), stddev(daily, m), m)
	}

	features := make([]float64, FeatureDim)
	for i := range features {
		features[i] = raw[i%len(raw)]
	}
	return features, nil
}

type chartKey struct {
	Asset string `json:"asset"`
	Days  int    `json:"days"`
}

func (y *YahooSource) closes(ctx context.Context, asset string, days int) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := chartKey{Asset: asset, Days: days}
	var cached []float64
	if y.cache.Get("chart", key, &cached) {
		return cached, nil
	}

	end := time.Now()
	// Calendar padding so weekends and holidays still leave enough bars.
	start := end.AddDate(0, 0, -(days*7/5 + 7))

	var closes []float64
	err := WithRetry(y.retry, func() error {
		params := &chart.Params{
			Symbol:   asset,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}
		iter := chart.Get(params)

		closes = closes[:0]
		for iter.Next() {
			bar := iter.Bar()
			c, _ := bar.Close.Float64()
			closes = append(closes, c)
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to get historical data for %s: %w", asset, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(closes) > days {
		closes = closes[len(closes)-days:]
	}
	if err := y.cache.Set("chart", key, closes); err != nil {
		log.Printf("failed to cache history for %s: %v", asset, err)
	}
	return closes, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64, m float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func momentum(daily []float64) float64 {
	total := 1.0
	for _, r := range daily {
		total *= 1 + r
	}
	return total - 1
}
