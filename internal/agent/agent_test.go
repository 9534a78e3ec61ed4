package agent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sentinelai/sentinel-agents/models"
)

func okHandler(confidence float64) HandlerFunc {
	return func(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
		return &models.ActionResult{
			Success:    true,
			Confidence: confidence,
			Payload:    map[string]interface{}{"ok": true},
		}, nil
	}
}

func TestExecuteRegisteredAction(t *testing.T) {
	b := NewBase("trader")
	b.Register("optimize_portfolio", okHandler(0.8))

	res := b.ExecuteAction(context.Background(), "optimize_portfolio", nil, nil)
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.Action != "optimize_portfolio" {
		t.Fatalf("result action not set, got %q", res.Action)
	}
	if res.Confidence < 0 || res.Confidence > 1 {
		t.Fatalf("confidence out of range: %f", res.Confidence)
	}
	if res.Error != "" {
		t.Fatalf("successful result must not carry an error, got %q", res.Error)
	}
}

func TestUnknownAction(t *testing.T) {
	b := NewBase("trader")
	b.Register("rebalance", okHandler(0.5))

	res := b.ExecuteAction(context.Background(), "teleport", nil, nil)
	if res.Success {
		t.Fatalf("unknown action must fail")
	}
	if res.Confidence != 0 {
		t.Fatalf("failed result must have confidence 0, got %f", res.Confidence)
	}
	if !strings.Contains(res.Error, "unknown action") || !strings.Contains(res.Error, "teleport") {
		t.Fatalf("error should mention the unknown action, got %q", res.Error)
	}

	m := b.Metrics()
	if m.TotalRequests != 1 || m.SuccessfulRequests != 0 {
		t.Fatalf("unknown action must still count: %+v", m)
	}
}

func TestHandlerErrorIsCaptured(t *testing.T) {
	b := NewBase("trader")
	b.Register("execute_trade", func(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
		return nil, errors.New("insufficient liquidity")
	})

	res := b.ExecuteAction(context.Background(), "execute_trade", nil, nil)
	if res.Success || res.Confidence != 0 {
		t.Fatalf("handler error must produce failed result with confidence 0: %+v", res)
	}
	if !strings.Contains(res.Error, "insufficient liquidity") {
		t.Fatalf("original message lost: %q", res.Error)
	}
}

func TestHandlerPanicDoesNotCrash(t *testing.T) {
	b := NewBase("trader")
	b.Register("explode", func(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
		panic("boom")
	})

	res := b.ExecuteAction(context.Background(), "explode", nil, nil)
	if res.Success {
		t.Fatalf("panicking handler must fail")
	}
	if !strings.Contains(res.Error, "boom") {
		t.Fatalf("panic message lost: %q", res.Error)
	}

	// Counters must survive the panic intact.
	m := b.Metrics()
	if m.TotalRequests != 1 || m.SuccessfulRequests != 0 {
		t.Fatalf("metrics corrupted by panic: %+v", m)
	}
}

func TestResultNormalization(t *testing.T) {
	b := NewBase("trader")
	b.Register("overconfident", func(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
		return &models.ActionResult{Success: true, Confidence: 1.7}, nil
	})
	b.Register("gave_up", func(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
		return &models.ActionResult{Success: false, Confidence: 0.4}, nil
	})

	if res := b.ExecuteAction(context.Background(), "overconfident", nil, nil); res.Confidence != 1 {
		t.Fatalf("confidence not clamped: %f", res.Confidence)
	}
	res := b.ExecuteAction(context.Background(), "gave_up", nil, nil)
	if res.Confidence != 0 || res.Error == "" {
		t.Fatalf("failed result not normalized: %+v", res)
	}
}

func TestMetricsRunningMean(t *testing.T) {
	b := NewBase("trader")
	delays := []time.Duration{2 * time.Millisecond, 5 * time.Millisecond, 11 * time.Millisecond}
	idx := 0
	b.Register("sleepy", func(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
		time.Sleep(delays[idx])
		idx++
		return &models.ActionResult{Success: true, Confidence: 1}, nil
	})

	for range delays {
		b.ExecuteAction(context.Background(), "sleepy", nil, nil)
	}

	m := b.Metrics()
	if m.TotalRequests != 3 {
		t.Fatalf("expected 3 requests, got %d", m.TotalRequests)
	}
	// The recorded elapsed times include scheduling overhead, so only a
	// lower bound on the mean is exact.
	minMean := (2 + 5 + 11) * time.Millisecond / 3
	if m.AvgResponseTime < minMean.Seconds() {
		t.Fatalf("running mean %f below minimum %f", m.AvgResponseTime, minMean.Seconds())
	}
}

func TestMetricsRunningMeanFormula(t *testing.T) {
	// Drive the tracker directly with exact elapsed times.
	var tr tracker
	elapsed := []time.Duration{100 * time.Millisecond, 300 * time.Millisecond, 500 * time.Millisecond, 50 * time.Millisecond}
	for _, e := range elapsed {
		tr.record(true, e)
	}

	want := (0.100 + 0.300 + 0.500 + 0.050) / 4
	got := tr.snapshot().AvgResponseTime
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("running mean = %f, want arithmetic mean %f", got, want)
	}
}

func TestSuccessRateScenario(t *testing.T) {
	b := NewBase("trader")
	call := 0
	b.Register("flaky", func(ctx context.Context, params, treasury map[string]interface{}) (*models.ActionResult, error) {
		call++
		if call == 2 {
			return nil, fmt.Errorf("induced failure on call %d", call)
		}
		return &models.ActionResult{Success: true, Confidence: 0.9}, nil
	})

	for i := 0; i < 3; i++ {
		b.ExecuteAction(context.Background(), "flaky", nil, nil)
	}

	m := b.Metrics()
	if m.TotalRequests != 3 || m.SuccessfulRequests != 2 {
		t.Fatalf("expected 3 requests / 2 successes, got %+v", m)
	}
	if math.Abs(m.SuccessRate-2.0/3.0) > 1e-9 {
		t.Fatalf("success rate = %f, want 0.667", m.SuccessRate)
	}
}

func TestZeroRequestsWellDefined(t *testing.T) {
	b := NewBase("trader")
	m := b.Metrics()
	if m.TotalRequests != 0 || m.SuccessRate != 0 || m.AvgResponseTime != 0 {
		t.Fatalf("fresh metrics should be zero: %+v", m)
	}
}

func TestStatusIdempotent(t *testing.T) {
	b := NewBase("advisor")
	b.Register("market_forecast", okHandler(0.7))
	b.ExecuteAction(context.Background(), "market_forecast", nil, nil)

	first := b.Status()
	second := b.Status()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("status must not mutate state:\n%+v\n%+v", first, second)
	}
	if len(first.Capabilities) != 1 || first.Capabilities[0] != "market_forecast" {
		t.Fatalf("capabilities wrong: %v", first.Capabilities)
	}
	if first.AgentID == "" {
		t.Fatalf("agent id missing")
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	b := NewBase("trader")
	b.Register("rebalance", okHandler(1))
	b.Register("rebalance", okHandler(1))
}

func TestRecordTrade(t *testing.T) {
	b := NewBase("trader")
	b.RecordTrade(1)
	b.RecordTrade(2)
	if got := b.Metrics().TotalTrades; got != 3 {
		t.Fatalf("expected 3 trades, got %d", got)
	}
}
