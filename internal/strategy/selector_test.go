package strategy

import (
	"testing"
	"time"

	"polysim/internal/config"
	"polysim/internal/market"
)

func pricedAnalysis(id string, yes float64) market.Analysis {
	return market.Analysis{
		MarketID:   id,
		Title:      "Test market " + id,
		HasPrices:  true,
		Prices:     market.PricePair{Yes: yes, No: 1 - yes},
		Volume:     50000,
		Liquidity:  10000,
		AnalyzedAt: time.Now(),
	}
}

func TestSelector_ArbitrageOutranksEverything(t *testing.T) {
	sel := NewSelector(config.DefaultConfig().Selector)

	profit := 4.0
	a := pricedAnalysis("m1", 0.40)
	a.Prices.No = 0.56
	a.Arbitrage = &profit
	a.Momentum = 5.0 // would also satisfy the momentum rule
	a.Bullish = true
	a.Score = 95

	cands := sel.Select([]market.Analysis{a}, nil, 0)
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	if cands[0].Strategy != "arbitrage" {
		t.Errorf("expected arbitrage to win the chain, got %q", cands[0].Strategy)
	}
	if cands[0].Outcome != "Yes" {
		t.Errorf("expected cheaper side Yes, got %q", cands[0].Outcome)
	}
	if cands[0].Priority <= 100 {
		t.Errorf("expected arbitrage priority above 100, got %.1f", cands[0].Priority)
	}
}

func TestSelector_OneCandidatePerMarket(t *testing.T) {
	sel := NewSelector(config.DefaultConfig().Selector)

	// Satisfies momentum and also the generic catch-all.
	a := pricedAnalysis("m1", 0.60)
	a.Momentum = 3.0
	a.Bullish = true
	a.Score = 50

	cands := sel.Select([]market.Analysis{a}, nil, 0)
	if len(cands) != 1 {
		t.Fatalf("expected exactly 1 candidate, got %d", len(cands))
	}
	if cands[0].Strategy != "momentum" {
		t.Errorf("expected first matching rule (momentum), got %q", cands[0].Strategy)
	}
}

func TestSelector_SkipsHeldPositions(t *testing.T) {
	sel := NewSelector(config.DefaultConfig().Selector)

	a := pricedAnalysis("m1", 0.60)
	a.Momentum = 3.0
	a.Bullish = true
	a.Score = 50

	held := func(marketID, outcome string) bool {
		return marketID == "m1" && outcome == "Yes"
	}

	if cands := sel.Select([]market.Analysis{a}, held, 0); len(cands) != 0 {
		t.Errorf("expected held position filtered out, got %d candidates", len(cands))
	}
}

func TestSelector_SortsByPriorityAndCaps(t *testing.T) {
	sel := NewSelectorWithRules(NewGeneric(0, 0, 0))

	analyses := []market.Analysis{}
	for id, score := range map[string]float64{"low": 10, "high": 30, "mid": 20} {
		a := pricedAnalysis(id, 0.5)
		a.Score = score
		analyses = append(analyses, a)
	}

	cands := sel.Select(analyses, nil, 2)
	if len(cands) != 2 {
		t.Fatalf("expected cap at 2, got %d", len(cands))
	}
	if cands[0].MarketID != "high" || cands[1].MarketID != "mid" {
		t.Errorf("expected [high mid], got [%s %s]", cands[0].MarketID, cands[1].MarketID)
	}
}

func TestSelector_DegenerateAnalysisNeverTrades(t *testing.T) {
	sel := NewSelector(config.DefaultConfig().Selector)

	a := market.Analysis{
		MarketID:  "m1",
		Volume:    1000000,
		Liquidity: 500000,
		Score:     99, // high interest, but no prices this cycle
	}

	if cands := sel.Select([]market.Analysis{a}, nil, 0); len(cands) != 0 {
		t.Errorf("expected no candidates without prices, got %d", len(cands))
	}
}

func TestMeanReversion_RequiresTrendAgreement(t *testing.T) {
	rule := NewMeanReversion(0.25)

	a := pricedAnalysis("m1", 0.20) // 0.30 below midpoint, reversion is bullish

	a.Trend = -0.5
	if _, ok := rule.Evaluate(a); ok {
		t.Error("expected no candidate when trend opposes the reversion")
	}

	a.Trend = 0.5
	cand, ok := rule.Evaluate(a)
	if !ok {
		t.Fatal("expected candidate when trend agrees")
	}
	if cand.Outcome != "Yes" {
		t.Errorf("bullish reversion should buy Yes, got %q", cand.Outcome)
	}
	if cand.TradeType != TradeSwing {
		t.Errorf("expected swing trade, got %q", cand.TradeType)
	}
}

func TestVolumeBreakout_RequiresFreshVolume(t *testing.T) {
	rule := NewVolumeBreakout(1.5, 0.15)

	a := pricedAnalysis("m1", 0.60)
	a.Momentum = 2.0
	a.Bullish = true
	a.Volume = 100000
	a.Volume24h = 5000 // only 5% of total traded recently

	if _, ok := rule.Evaluate(a); ok {
		t.Error("expected no candidate on stale volume")
	}

	a.Volume24h = 20000
	cand, ok := rule.Evaluate(a)
	if !ok {
		t.Fatal("expected candidate with 20% fresh volume")
	}
	if cand.TradeType != TradeScalp {
		t.Errorf("expected scalp trade, got %q", cand.TradeType)
	}
}

func TestMomentum_ConfidenceScalesWithMagnitude(t *testing.T) {
	rule := NewMomentum(1.5)

	weak := pricedAnalysis("m1", 0.60)
	weak.Momentum = 1.6
	weak.Bullish = true

	strong := pricedAnalysis("m2", 0.60)
	strong.Momentum = 12.0
	strong.Bullish = true

	wc, ok := rule.Evaluate(weak)
	if !ok {
		t.Fatal("expected weak candidate")
	}
	sc, ok := rule.Evaluate(strong)
	if !ok {
		t.Fatal("expected strong candidate")
	}
	if wc.Confidence >= sc.Confidence {
		t.Errorf("expected confidence to grow with momentum: %.2f vs %.2f", wc.Confidence, sc.Confidence)
	}
	if sc.Confidence > 1 {
		t.Errorf("confidence must cap at 1, got %.2f", sc.Confidence)
	}
}
