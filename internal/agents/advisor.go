package agents

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/sentinelai/sentinel-agents/internal/agent"
	"github.com/sentinelai/sentinel-agents/internal/dataflows"
	"github.com/sentinelai/sentinel-agents/models"
)

// crisisScenarios are the stress cases run by crisis_simulation, with the
// shock applied to each asset's expected return.
var crisisScenarios = map[string]float64{
	"flash_crash":            -0.40,
	"regulatory_change":      -0.15,
	"smart_contract_exploit": -0.60,
	"market_manipulation":    -0.25,
}

// HeadlineFetcher is the slice of the headline client the advisor needs.
type HeadlineFetcher interface {
	FetchHeadlines(ctx context.Context, query string, maxResults int) ([]*models.NewsHeadline, error)
}

// Advisor produces market forecasts, strategy recommendations, and crisis
// simulations. Headline sentiment is best-effort: a failed fetch degrades
// to neutral instead of failing the action.
type Advisor struct {
	*agent.Base
	source    dataflows.MarketDataSource
	headlines HeadlineFetcher
}

func NewAdvisor(source dataflows.MarketDataSource, headlines HeadlineFetcher) *Advisor {
	a := &Advisor{
		Base:      agent.NewBase("advisor"),
		source:    source,
		headlines: headlines,
	}

	a.Register("market_forecast", a.marketForecast)
	a.Register("strategy_recommendation", a.strategyRecommendation)
	a.Register("crisis_simulation", a.crisisSimulation)

	return a
}

func (a *Advisor) sentiment(ctx context.Context, query string) float64 {
	if a.headlines == nil {
		return 0
	}
	heads, err := a.headlines.FetchHeadlines(ctx, query, 20)
	if err != nil {
		log.Printf("headline fetch failed, using neutral sentiment: %v", err)
		return 0
	}
	return dataflows.ScoreSentiment(heads)
}

func (a *Advisor) marketForecast(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	assets := stringSlice(params["assets"])
	if len(assets) == 0 {
		return nil, fmt.Errorf("missing parameter: assets")
	}
	horizon := intOr(params["time_horizon"], 24) // hours

	expected, err := a.source.ExpectedReturns(ctx, assets)
	if err != nil {
		return nil, fmt.Errorf("expected returns: %w", err)
	}

	sentiment := a.sentiment(ctx, "crypto market")

	forecasts := make(map[string]interface{}, len(assets))
	for _, asset := range assets {
		// Sentiment shifts the baseline by up to ±2%.
		adjusted := expected[asset] + sentiment*0.02
		outlook := "neutral"
		if adjusted > 0.05 {
			outlook = "bullish"
		} else if adjusted < -0.05 {
			outlook = "bearish"
		}
		forecasts[asset] = map[string]interface{}{
			"expected_return": adjusted,
			"outlook":         outlook,
		}
	}

	return &models.ActionResult{
		Success:    true,
		Confidence: 0.75,
		Payload: map[string]interface{}{
			"forecasts":          forecasts,
			"market_sentiment":   sentiment,
			"time_horizon_hours": horizon,
		},
	}, nil
}

func (a *Advisor) strategyRecommendation(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	tolerance, _ := params["risk_tolerance"].(string)
	var strategy string
	switch tolerance {
	case "low":
		strategy = "conservative"
	case "medium", "":
		strategy = "moderate"
	case "high":
		strategy = "aggressive"
	default:
		return nil, fmt.Errorf("invalid parameter: risk_tolerance must be low, medium or high")
	}

	allocations := strategyAllocations[strategy]
	assets := make([]string, 0, len(allocations))
	for asset := range allocations {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	expected, err := a.source.ExpectedReturns(ctx, assets)
	if err != nil {
		return nil, fmt.Errorf("expected returns: %w", err)
	}
	projected := 0.0
	for asset, alloc := range allocations {
		projected += alloc * expected[asset]
	}

	return &models.ActionResult{
		Success:    true,
		Confidence: 0.8,
		Payload: map[string]interface{}{
			"strategy":               strategy,
			"allocations":            allocations,
			"projected_annual_yield": projected,
			"risk_tolerance":         tolerance,
		},
	}, nil
}

func (a *Advisor) crisisSimulation(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
	totalValue := floatOr(treasury["total_value_usd"], 0)
	allocations := floatMap(treasury["current_allocations"])

	names := make([]string, 0, len(crisisScenarios))
	for name := range crisisScenarios {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]interface{}, len(names))
	for _, name := range names {
		shock := crisisScenarios[name]
		loss := 0.0
		for _, alloc := range allocations {
			loss += alloc * shock * totalValue
		}
		results[name] = map[string]interface{}{
			"shock":           shock,
			"projected_loss":  loss,
			"projected_value": totalValue + loss,
		}
	}

	return &models.ActionResult{
		Success:    true,
		Confidence: 0.7,
		Payload: map[string]interface{}{
			"simulation_id": uuid.New().String(),
			"status":        "completed",
			"scenarios":     names,
			"results":       results,
		},
	}, nil
}
