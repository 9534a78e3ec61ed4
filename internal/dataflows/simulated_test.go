package dataflows

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sentinelai/sentinel-agents/models"
)

func TestSimulatedSourceDeterministic(t *testing.T) {
	ctx := context.Background()
	a := NewSimulatedSource(42)
	b := NewSimulatedSource(42)

	fa, err := a.Features(ctx, []string{"ETH", "UNI"})
	if err != nil {
		t.Fatalf("Features: %v", err)
	}
	fb, _ := b.Features(ctx, []string{"ETH", "UNI"})

	if len(fa) != FeatureDim {
		t.Fatalf("expected %d features, got %d", FeatureDim, len(fa))
	}
	for i := range fa {
		if fa[i] != fb[i] {
			t.Fatalf("same seed diverged at feature %d: %f vs %f", i, fa[i], fb[i])
		}
	}
}

func TestSimulatedHistoricalReturns(t *testing.T) {
	s := NewSimulatedSource(1)

	series, err := s.HistoricalReturns(context.Background(), "ETH", 60)
	if err != nil {
		t.Fatalf("HistoricalReturns: %v", err)
	}
	if len(series) != 60 {
		t.Fatalf("expected 60 returns, got %d", len(series))
	}

	if _, err := s.HistoricalReturns(context.Background(), "ETH", 0); err == nil {
		t.Fatalf("expected error for non-positive days")
	}
}

func TestSimulatedPriceTable(t *testing.T) {
	s := NewSimulatedSource(1)
	ctx := context.Background()

	eth, err := s.Price(ctx, "ETH")
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if !eth.Equal(decimal.NewFromFloat(2500.0)) {
		t.Fatalf("expected ETH at 2500, got %s", eth)
	}

	unknown, _ := s.Price(ctx, "WIDGET")
	if !unknown.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unlisted asset should fall back to 100, got %s", unknown)
	}
}

func TestSimulatedSourceHonorsContext(t *testing.T) {
	s := NewSimulatedSource(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Features(ctx, nil); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestScoreSentiment(t *testing.T) {
	now := time.Now()
	mk := func(title string) *models.NewsHeadline {
		return &models.NewsHeadline{Title: title, FetchedAt: now}
	}

	if got := ScoreSentiment(nil); got != 0 {
		t.Fatalf("empty input should be neutral, got %f", got)
	}

	bull := []*models.NewsHeadline{mk("Markets surge to record highs"), mk("Tech rally continues")}
	if got := ScoreSentiment(bull); got <= 0 {
		t.Fatalf("bullish headlines scored %f", got)
	}

	bear := []*models.NewsHeadline{mk("Stocks plunge on recession fear")}
	if got := ScoreSentiment(bear); got >= 0 {
		t.Fatalf("bearish headlines scored %f", got)
	}

	mixed := []*models.NewsHeadline{mk("Shares gain despite selloff worries")}
	if got := ScoreSentiment(mixed); got < -1 || got > 1 {
		t.Fatalf("score out of range: %f", got)
	}
}

func TestScoreSentimentBounds(t *testing.T) {
	heads := []*models.NewsHeadline{
		{Title: "surge rally gain record growth"},
		{Title: "crash plunge drop"},
	}
	got := ScoreSentiment(heads)
	if got < -1 || got > 1 {
		t.Fatalf("score out of [-1,1]: %f", got)
	}
}
