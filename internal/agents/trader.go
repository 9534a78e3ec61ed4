// Package agents holds the concrete agents: trader, compliance,
// supervisor, and advisor. Each embeds the dispatch base and registers its
// handlers at construction; all market numbers come from the data source
// collaborator, never from logic baked into the handlers.
package agents

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/sentinelai/sentinel-agents/internal/agent"
	"github.com/sentinelai/sentinel-agents/internal/dataflows"
	"github.com/sentinelai/sentinel-agents/models"
)

// Trader manages portfolio allocation, rebalancing, risk analysis, yield
// prediction and simulated trade execution.
type Trader struct {
	*agent.Base
	source       dataflows.MarketDataSource
	minTradeSize float64
	failProb     float64
	rng          *rand.Rand
}

type TraderOption func(*Trader)

// WithMinTradeSize overrides the default USD floor for rebalance trades.
func WithMinTradeSize(size float64) TraderOption {
	return func(t *Trader) { t.minTradeSize = size }
}

// WithTradeFailureProbability overrides the simulated execution failure
// rate (default 5%). Tests pin it to 0 or 1.
func WithTradeFailureProbability(p float64) TraderOption {
	return func(t *Trader) { t.failProb = p }
}

func WithTraderSeed(seed int64) TraderOption {
	return func(t *Trader) { t.rng = rand.New(rand.NewSource(seed)) }
}

func NewTrader(source dataflows.MarketDataSource, opts ...TraderOption) *Trader {
	t := &Trader{
		Base:         agent.NewBase("trader"),
		source:       source,
		minTradeSize: 1000,
		failProb:     0.05,
		rng:          rand.New(rand.NewSource(rand.Int63())),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.Register("optimize_portfolio", t.optimizePortfolio)
	t.Register("rebalance", t.rebalance)
	t.Register("risk_analysis", t.riskAnalysis)
	t.Register("yield_prediction", t.yieldPrediction)
	t.Register("execute_trade", t.executeTrade)

	return t
}

func (t *Trader) optimizePortfolio(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	assets := stringSlice(params["assets"])
	if len(assets) == 0 {
		return nil, fmt.Errorf("missing parameter: assets")
	}

	features, err := t.source.Features(ctx, assets)
	if err != nil {
		return nil, fmt.Errorf("market features: %w", err)
	}

	allocations, riskScore := allocationsFromFeatures(features, len(assets))

	expected, err := t.source.ExpectedReturns(ctx, assets)
	if err != nil {
		return nil, fmt.Errorf("expected returns: %w", err)
	}

	portfolioReturn := 0.0
	allocationMap := make(map[string]interface{}, len(assets))
	for i, asset := range assets {
		allocationMap[asset] = allocations[i]
		portfolioReturn += allocations[i] * expected[asset]
	}

	return &models.ActionResult{
		Success:    true,
		Confidence: 1.0 - riskScore,
		Payload: map[string]interface{}{
			"allocations":        allocationMap,
			"expected_return":    portfolioReturn,
			"risk_score":         riskScore,
			"recommendations":    allocationRecommendations(allocations, riskScore),
			"rebalance_required": rebalanceNeeded(assets, allocations, treasury),
		},
	}, nil
}

func (t *Trader) rebalance(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	targets := floatMap(params["target_allocations"])
	if len(targets) == 0 {
		return nil, fmt.Errorf("missing parameter: target_allocations")
	}
	current := floatMap(treasury["current_allocations"])
	totalValue := floatOr(treasury["total_value_usd"], 0)
	minTrade := floatOr(params["min_trade_size"], t.minTradeSize)

	// Stable iteration so the execution plan is reproducible.
	assets := make([]string, 0, len(targets))
	for asset := range targets {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	trades := make([]models.Trade, 0, len(assets))
	totalTradeValue := 0.0
	for _, asset := range assets {
		targetPct := targets[asset]
		currentPct := current[asset]
		tradeValue := (targetPct - currentPct) * totalValue

		if math.Abs(tradeValue) > minTrade {
			side := "buy"
			if tradeValue < 0 {
				side = "sell"
			}
			trades = append(trades, models.Trade{
				Asset:             asset,
				Action:            side,
				Amount:            math.Abs(tradeValue),
				CurrentAllocation: currentPct,
				TargetAllocation:  targetPct,
			})
			totalTradeValue += math.Abs(tradeValue)
		}
	}

	t.RecordTrade(int64(len(trades)))

	return &models.ActionResult{
		Success:    true,
		Confidence: 0.85,
		Payload: map[string]interface{}{
			"trades":             trades,
			"total_trades":       len(trades),
			"total_trade_value":  totalTradeValue,
			"estimated_gas":      float64(len(trades)) * 0.01 * totalValue,
			"estimated_slippage": totalTradeValue * 0.005,
			"execution_plan":     executionPlan(trades),
		},
	}, nil
}

func (t *Trader) riskAnalysis(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	assets := stringSlice(params["assets"])
	if len(assets) == 0 {
		return nil, fmt.Errorf("missing parameter: assets")
	}
	horizon := intOr(params["time_horizon"], 30)

	assetRisks := make(map[string]models.AssetRisk, len(assets))
	for _, asset := range assets {
		series, err := t.source.HistoricalReturns(ctx, asset, horizon*2)
		if err != nil {
			return nil, fmt.Errorf("historical returns for %s: %w", asset, err)
		}
		if len(series) == 0 {
			continue
		}
		assetRisks[asset] = riskFromSeries(series)
	}

	portfolioVaR := 0.0
	for asset, alloc := range floatMap(treasury["current_allocations"]) {
		if risk, ok := assetRisks[asset]; ok {
			portfolioVaR += alloc * risk.VaR95
		}
	}

	riskLevel := "high"
	switch {
	case portfolioVaR > -0.05:
		riskLevel = "low"
	case portfolioVaR > -0.10:
		riskLevel = "medium"
	}

	return &models.ActionResult{
		Success:    true,
		Confidence: 0.90,
		Payload: map[string]interface{}{
			"asset_risks":       assetRisks,
			"portfolio_var_95":  portfolioVaR,
			"risk_level":        riskLevel,
			"recommendations":   riskRecommendations(riskLevel),
			"time_horizon_days": horizon,
		},
	}, nil
}

// Predefined strategy allocation tables.
var strategyAllocations = map[string]map[string]float64{
	"conservative": {"ETH": 0.3, "USDC": 0.5, "AAVE": 0.2},
	"moderate":     {"ETH": 0.4, "USDC": 0.3, "AAVE": 0.2, "UNI": 0.1},
	"aggressive":   {"ETH": 0.5, "AAVE": 0.3, "UNI": 0.2},
}

func (t *Trader) yieldPrediction(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	strategies := stringSlice(params["strategies"])
	if len(strategies) == 0 {
		strategies = []string{"conservative", "moderate", "aggressive"}
	}
	horizon := intOr(params["time_horizon"], 365)
	if horizon <= 0 {
		return nil, fmt.Errorf("time_horizon must be positive, got %d", horizon)
	}

	predictions := make(map[string]models.YieldPrediction, len(strategies))
	bestStrategy := ""
	bestReturn := math.Inf(-1)

	for _, strategy := range strategies {
		allocations, ok := strategyAllocations[strategy]
		if !ok {
			allocations = strategyAllocations["moderate"]
		}

		assets := make([]string, 0, len(allocations))
		for asset := range allocations {
			assets = append(assets, asset)
		}
		sort.Strings(assets)

		expected, err := t.source.ExpectedReturns(ctx, assets)
		if err != nil {
			return nil, fmt.Errorf("expected returns: %w", err)
		}

		portfolioReturn := 0.0
		for asset, alloc := range allocations {
			portfolioReturn += alloc * expected[asset]
		}
		annualYield := portfolioReturn * (365.0 / float64(horizon))
		riskAdjusted := annualYield * 0.8

		predictions[strategy] = models.YieldPrediction{
			ExpectedAnnualYield: annualYield,
			Allocations:         allocations,
			Confidence:          0.75,
			RiskAdjustedReturn:  riskAdjusted,
		}
		if riskAdjusted > bestReturn {
			bestReturn = riskAdjusted
			bestStrategy = strategy
		}
	}

	return &models.ActionResult{
		Success:    true,
		Confidence: 0.80,
		Payload: map[string]interface{}{
			"predictions":          predictions,
			"recommended_strategy": bestStrategy,
			"time_horizon_days":    horizon,
		},
	}, nil
}

func (t *Trader) executeTrade(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	asset, _ := params["asset"].(string)
	if asset == "" {
		return nil, fmt.Errorf("missing parameter: asset")
	}
	side, _ := params["action"].(string)
	if side != "buy" && side != "sell" {
		return nil, fmt.Errorf("invalid parameter: action must be buy or sell")
	}
	amount := floatOr(params["amount"], 0)
	if amount <= 0 {
		return nil, fmt.Errorf("invalid parameter: amount must be positive")
	}

	price, err := t.source.Price(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("price for %s: %w", asset, err)
	}

	t.RecordTrade(1)

	// Simulated execution: a small fraction of trades fail on liquidity.
	if t.rng.Float64() < t.failProb {
		return &models.ActionResult{
			Success: false,
			Error:   "trade execution failed - insufficient liquidity",
		}, nil
	}

	slippage := amount * 0.001
	gasCost := 50.0
	executionPrice, _ := price.Float64()

	return &models.ActionResult{
		Success:    true,
		Confidence: 0.95,
		Payload: map[string]interface{}{
			"asset":            asset,
			"trade_action":     side,
			"requested_amount": amount,
			"executed_amount":  amount - slippage,
			"execution_price":  executionPrice,
			"slippage":         slippage,
			"gas_cost":         gasCost,
			"total_cost":       amount + gasCost,
			"transaction_id":   uuid.New().String(),
		},
	}, nil
}

// allocationsFromFeatures turns the raw feature vector into normalized
// allocations plus a risk score in [0,1]. Softmax over per-asset slices of
// the vector keeps the weights positive and summing to one.
func allocationsFromFeatures(features []float64, numAssets int) ([]float64, float64) {
	scores := make([]float64, numAssets)
	for i := range features {
		scores[i%numAssets] += features[i]
	}
	width := len(features) / numAssets
	if width == 0 {
		width = 1
	}

	sum := 0.0
	allocations := make([]float64, numAssets)
	for i, s := range scores {
		allocations[i] = math.Exp(s / float64(width))
		sum += allocations[i]
	}
	for i := range allocations {
		allocations[i] /= sum
	}

	// Sigmoid of the feature mean keeps the risk score in (0,1).
	m := 0.0
	for _, f := range features {
		m += f
	}
	m /= float64(len(features))
	riskScore := 1.0 / (1.0 + math.Exp(-m))

	return allocations, riskScore
}

func allocationRecommendations(allocations []float64, riskScore float64) []string {
	var recommendations []string

	if riskScore > 0.7 {
		recommendations = append(recommendations, "High risk detected - consider reducing exposure to volatile assets")
	}

	maxAlloc := 0.0
	diversified := 0
	for _, a := range allocations {
		if a > maxAlloc {
			maxAlloc = a
		}
		if a > 0.05 {
			diversified++
		}
	}
	if maxAlloc > 0.4 {
		recommendations = append(recommendations, "Consider diversifying - largest allocation exceeds 40%")
	}
	if diversified < 3 {
		recommendations = append(recommendations, "Portfolio may be under-diversified - consider adding more assets")
	}

	return recommendations
}

func rebalanceNeeded(assets []string, target []float64, treasury map[string]interface{}) bool {
	current := floatMap(treasury["current_allocations"])
	if len(current) != len(target) {
		return true
	}
	for i, asset := range assets {
		if math.Abs(current[asset]-target[i]) > 0.05 {
			return true
		}
	}
	return false
}

func riskFromSeries(series []float64) models.AssetRisk {
	sorted := append([]float64(nil), series...)
	sort.Float64s(sorted)

	// 5th percentile of the return series.
	idx := int(float64(len(sorted)) * 0.05)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	var95 := sorted[idx]

	tailSum, tailN := 0.0, 0
	sum := 0.0
	for _, r := range series {
		sum += r
		if r <= var95 {
			tailSum += r
			tailN++
		}
	}
	m := sum / float64(len(series))

	varSum := 0.0
	for _, r := range series {
		varSum += (r - m) * (r - m)
	}
	vol := math.Sqrt(varSum / float64(len(series)))

	cvar := var95
	if tailN > 0 {
		cvar = tailSum / float64(tailN)
	}
	sharpe := 0.0
	if vol > 0 {
		sharpe = m / vol
	}

	return models.AssetRisk{
		VaR95:       var95,
		CVaR95:      cvar,
		Volatility:  vol,
		SharpeRatio: sharpe,
	}
}

func riskRecommendations(riskLevel string) []string {
	switch riskLevel {
	case "high":
		return []string{
			"Consider reducing position sizes or adding hedging instruments",
			"Implement stop-loss orders for high-risk positions",
		}
	case "medium":
		return []string{"Monitor positions closely and consider partial profit-taking"}
	default:
		return []string{"Current risk level is acceptable for the strategy"}
	}
}

func executionPlan(trades []models.Trade) map[string]interface{} {
	order := make([]string, len(trades))
	for i, trade := range trades {
		order[i] = trade.Asset
	}
	batch := len(trades)
	if batch > 3 {
		batch = 3
	}
	return map[string]interface{}{
		"execution_order": order,
		"estimated_time":  len(trades) * 2, // minutes
		"batch_size":      batch,
		"priority":        "normal",
	}
}
