package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sentinelai/sentinel-agents/models"
)

func openTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	records := []models.ActionRecord{
		{AgentType: "trader", Action: "rebalance", Success: true, Confidence: 0.85, ElapsedSec: 0.012},
		{AgentType: "trader", Action: "execute_trade", Success: false, Confidence: 0, Error: "insufficient liquidity", ElapsedSec: 0.002},
		{AgentType: "advisor", Action: "market_forecast", Success: true, Confidence: 0.75, Explanation: "Advisor prediction", ElapsedSec: 0.4},
	}
	for _, rec := range records {
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	all, err := store.List(ctx, "", 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	// Newest first.
	if all[0].Action != "market_forecast" {
		t.Fatalf("expected newest record first, got %s", all[0].Action)
	}
	if all[1].Error != "insufficient liquidity" {
		t.Fatalf("error text not persisted: %+v", all[1])
	}

	traders, err := store.List(ctx, "trader", 10)
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(traders) != 2 {
		t.Fatalf("expected 2 trader records, got %d", len(traders))
	}
	for _, rec := range traders {
		if rec.AgentType != "trader" {
			t.Fatalf("filter leaked record: %+v", rec)
		}
	}
}

func TestListLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, models.ActionRecord{AgentType: "trader", Action: "rebalance", Success: true}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := store.List(ctx, "", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("limit not applied: got %d records", len(got))
	}
}

func TestCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, models.ActionRecord{AgentType: "compliance", Action: "check_transaction", Success: true}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	n, err := store.Count(ctx, "")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 record, got %d", n)
	}

	n, _ = store.Count(ctx, "trader")
	if n != 0 {
		t.Fatalf("expected 0 trader records, got %d", n)
	}
}
