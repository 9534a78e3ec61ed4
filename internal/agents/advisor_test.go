package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/sentinelai/sentinel-agents/internal/dataflows"
	"github.com/sentinelai/sentinel-agents/models"
)

type stubHeadlines struct {
	heads []*models.NewsHeadline
	err   error
}

func (s *stubHeadlines) FetchHeadlines(ctx context.Context, query string, max int) ([]*models.NewsHeadline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.heads, s.err
}

func newTestAdvisor(h HeadlineFetcher) *Advisor {
	return NewAdvisor(dataflows.NewSimulatedSource(42), h)
}

func TestMarketForecast(t *testing.T) {
	a := newTestAdvisor(&stubHeadlines{heads: []*models.NewsHeadline{{Title: "Crypto markets rally on ETF growth"}}})

	res := a.ExecuteAction(context.Background(), "market_forecast",
		map[string]interface{}{"assets": []string{"ETH", "UNI"}}, nil)

	if !res.Success {
		t.Fatalf("market_forecast failed: %s", res.Error)
	}
	if got := res.Payload["market_sentiment"].(float64); got <= 0 {
		t.Fatalf("bullish headlines should give positive sentiment, got %f", got)
	}

	forecasts := res.Payload["forecasts"].(map[string]interface{})
	for _, asset := range []string{"ETH", "UNI"} {
		f, ok := forecasts[asset].(map[string]interface{})
		if !ok {
			t.Fatalf("missing forecast for %s", asset)
		}
		outlook := f["outlook"].(string)
		if outlook != "bullish" && outlook != "bearish" && outlook != "neutral" {
			t.Fatalf("unexpected outlook %q", outlook)
		}
	}
}

func TestMarketForecastDegradesWithoutHeadlines(t *testing.T) {
	a := newTestAdvisor(&stubHeadlines{err: errors.New("network down")})

	res := a.ExecuteAction(context.Background(), "market_forecast",
		map[string]interface{}{"assets": []string{"ETH"}}, nil)

	if !res.Success {
		t.Fatalf("headline failure must not fail the action: %s", res.Error)
	}
	if got := res.Payload["market_sentiment"].(float64); got != 0 {
		t.Fatalf("expected neutral sentiment on fetch failure, got %f", got)
	}
}

func TestStrategyRecommendation(t *testing.T) {
	a := newTestAdvisor(nil)
	ctx := context.Background()

	res := a.ExecuteAction(ctx, "strategy_recommendation",
		map[string]interface{}{"risk_tolerance": "low"}, nil)
	if !res.Success {
		t.Fatalf("strategy_recommendation failed: %s", res.Error)
	}
	if got := res.Payload["strategy"].(string); got != "conservative" {
		t.Fatalf("low tolerance should map to conservative, got %q", got)
	}

	res = a.ExecuteAction(ctx, "strategy_recommendation",
		map[string]interface{}{"risk_tolerance": "reckless"}, nil)
	if res.Success {
		t.Fatalf("unknown tolerance must be rejected")
	}
}

func TestCrisisSimulation(t *testing.T) {
	a := newTestAdvisor(nil)

	res := a.ExecuteAction(context.Background(), "crisis_simulation", nil,
		map[string]interface{}{
			"total_value_usd":     100000.0,
			"current_allocations": map[string]float64{"ETH": 0.6, "USDC": 0.4},
		})

	if !res.Success {
		t.Fatalf("crisis_simulation failed: %s", res.Error)
	}
	if res.Payload["simulation_id"].(string) == "" {
		t.Fatalf("missing simulation id")
	}

	scenarios := res.Payload["scenarios"].([]string)
	if len(scenarios) != 4 {
		t.Fatalf("expected 4 scenarios, got %v", scenarios)
	}

	results := res.Payload["results"].(map[string]interface{})
	flash := results["flash_crash"].(map[string]interface{})
	if loss := flash["projected_loss"].(float64); loss >= 0 {
		t.Fatalf("flash crash must project a loss, got %f", loss)
	}
}
