package market

import (
	"testing"
	"time"
)

func TestAnalysisStore_DegenerateNeverReplacesPriced(t *testing.T) {
	store := NewAnalysisStore(10)
	now := time.Now()

	priced := Analysis{
		MarketID:   "m1",
		HasPrices:  true,
		Prices:     PricePair{Yes: 0.6, No: 0.4},
		Score:      42,
		AnalyzedAt: now,
	}
	store.Put(priced)

	// Next cycle the market returns no prices.
	store.Put(Analysis{MarketID: "m1", Score: 10, AnalyzedAt: now.Add(time.Second)})

	got, ok := store.Get("m1")
	if !ok {
		t.Fatal("expected analysis present")
	}
	if !got.HasPrices || got.Score != 42 {
		t.Error("degenerate analysis replaced the priced one")
	}
}

func TestAnalysisStore_DegenerateFillsEmptySlot(t *testing.T) {
	store := NewAnalysisStore(10)

	store.Put(Analysis{MarketID: "m1", Score: 10, AnalyzedAt: time.Now()})

	got, ok := store.Get("m1")
	if !ok {
		t.Fatal("expected degenerate analysis stored when nothing priced exists")
	}
	if got.HasPrices {
		t.Error("expected HasPrices false")
	}
}

func TestAnalysisStore_EvictsStalest(t *testing.T) {
	store := NewAnalysisStore(2)
	now := time.Now()

	store.Put(Analysis{MarketID: "old", HasPrices: true, AnalyzedAt: now})
	store.Put(Analysis{MarketID: "mid", HasPrices: true, AnalyzedAt: now.Add(time.Second)})
	store.Put(Analysis{MarketID: "new", HasPrices: true, AnalyzedAt: now.Add(2 * time.Second)})

	if store.Len() != 2 {
		t.Fatalf("expected store capped at 2, got %d", store.Len())
	}
	if _, ok := store.Get("old"); ok {
		t.Error("expected stalest analysis evicted")
	}
	if _, ok := store.Get("new"); !ok {
		t.Error("expected freshest analysis retained")
	}
}

func TestAnalysisStore_IgnoresEmptyID(t *testing.T) {
	store := NewAnalysisStore(10)
	store.Put(Analysis{AnalyzedAt: time.Now()})
	if store.Len() != 0 {
		t.Error("expected analysis without market id to be dropped")
	}
}
