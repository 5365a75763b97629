package exit

import (
	"strings"
	"testing"
	"time"

	"polysim/internal/config"
	"polysim/internal/ledger"
	"polysim/internal/market"
	"polysim/internal/strategy"
)

func newTestPolicy() *Policy {
	return NewPolicy(config.DefaultConfig().Exit)
}

func scalpPosition(entry float64, age time.Duration) ledger.Position {
	return ledger.Position{
		MarketID:   "m1",
		Outcome:    "Yes",
		EntryPrice: entry,
		Size:       50,
		Strategy:   "momentum",
		TradeType:  strategy.TradeScalp,
		EntryTime:  time.Now().Add(-age),
	}
}

func swingPosition(strategyName string, entry float64) ledger.Position {
	return ledger.Position{
		MarketID:   "m1",
		Outcome:    "Yes",
		EntryPrice: entry,
		Size:       50,
		Strategy:   strategyName,
		TradeType:  strategy.TradeSwing,
		EntryTime:  time.Now().Add(-time.Hour),
	}
}

func TestPolicy_ScalpTakeProfit(t *testing.T) {
	p := newTestPolicy()
	pos := scalpPosition(0.50, time.Minute)

	d, ok := p.Evaluate(pos, Mark{Price: 0.511}, time.Now())
	if !ok {
		t.Fatal("expected take profit at +2.2%")
	}
	if !strings.Contains(d.Reason, "Scalp take profit") {
		t.Errorf("unexpected reason %q", d.Reason)
	}
	if d.ExitPrice != 0.511 {
		t.Errorf("expected exit at mark 0.511, got %.3f", d.ExitPrice)
	}
}

func TestPolicy_ScalpStopLoss(t *testing.T) {
	p := newTestPolicy()
	pos := scalpPosition(0.50, time.Minute)

	d, ok := p.Evaluate(pos, Mark{Price: 0.495}, time.Now())
	if !ok {
		t.Fatal("expected stop loss at -1%")
	}
	if !strings.Contains(d.Reason, "Scalp stop loss") {
		t.Errorf("unexpected reason %q", d.Reason)
	}
}

func TestPolicy_ScalpMaxHold(t *testing.T) {
	p := newTestPolicy()
	pos := scalpPosition(0.50, 3*time.Hour)

	// Flat price, but the position has aged past the hold limit.
	d, ok := p.Evaluate(pos, Mark{Price: 0.50}, time.Now())
	if !ok {
		t.Fatal("expected max-hold exit")
	}
	if !strings.Contains(d.Reason, "max hold") {
		t.Errorf("unexpected reason %q", d.Reason)
	}
}

func TestPolicy_ScalpHoldsInsideBand(t *testing.T) {
	p := newTestPolicy()
	pos := scalpPosition(0.50, time.Minute)

	if _, ok := p.Evaluate(pos, Mark{Price: 0.502}, time.Now()); ok {
		t.Error("expected no exit at +0.4% on a young scalp")
	}
}

func TestPolicy_ArbitrageCorrected(t *testing.T) {
	p := newTestPolicy()
	pos := swingPosition("arbitrage", 0.40)

	pair := market.PricePair{Yes: 0.41, No: 0.59}
	d, ok := p.Evaluate(pos, Mark{Price: 0.41, Pair: &pair}, time.Now())
	if !ok {
		t.Fatal("expected exit once yes+no corrected to 1.0")
	}
	if !strings.Contains(d.Reason, "Arbitrage corrected") {
		t.Errorf("unexpected reason %q", d.Reason)
	}
}

func TestPolicy_ArbitrageTakeProfitWhileMispriced(t *testing.T) {
	p := newTestPolicy()
	pos := swingPosition("arbitrage", 0.40)

	// Still mispriced (sum 0.95) but the position is up 5%.
	pair := market.PricePair{Yes: 0.42, No: 0.53}
	d, ok := p.Evaluate(pos, Mark{Price: 0.42, Pair: &pair}, time.Now())
	if !ok {
		t.Fatal("expected take profit at +5%")
	}
	if !strings.Contains(d.Reason, "take profit") {
		t.Errorf("unexpected reason %q", d.Reason)
	}
}

func TestPolicy_ArbitrageHoldsWithoutPair(t *testing.T) {
	p := newTestPolicy()
	pos := swingPosition("arbitrage", 0.40)

	// One-sided mark, small gain: neither condition can fire.
	if _, ok := p.Evaluate(pos, Mark{Price: 0.405}, time.Now()); ok {
		t.Error("expected arbitrage position held without a corrected pair")
	}
}

func TestPolicy_MeanReversionRecovery(t *testing.T) {
	p := newTestPolicy()
	pos := swingPosition("meanreversion", 0.20)

	// Entry was 0.30 from midpoint; 0.36 is within half that distance.
	d, ok := p.Evaluate(pos, Mark{Price: 0.36}, time.Now())
	if !ok {
		t.Fatal("expected recovery exit")
	}
	if !strings.Contains(d.Reason, "Mean reversion target") {
		t.Errorf("unexpected reason %q", d.Reason)
	}
}

func TestPolicy_SwingBandDefaults(t *testing.T) {
	p := newTestPolicy()

	d, ok := p.Evaluate(swingPosition("generic", 0.50), Mark{Price: 0.56}, time.Now())
	if !ok {
		t.Fatal("expected take profit at +12% on the 10% swing band")
	}
	if !strings.Contains(d.Reason, "Take profit") {
		t.Errorf("unexpected reason %q", d.Reason)
	}

	d, ok = p.Evaluate(swingPosition("generic", 0.50), Mark{Price: 0.47}, time.Now())
	if !ok {
		t.Fatal("expected stop loss at -6% on the 5% swing band")
	}
	if !strings.Contains(d.Reason, "Stop loss") {
		t.Errorf("unexpected reason %q", d.Reason)
	}
}

func TestPolicy_ContextSwingWiderBandHolds(t *testing.T) {
	p := newTestPolicy()

	// +11% would close a plain swing, but context positions ride to 12%.
	if _, ok := p.Evaluate(swingPosition("contextswing", 0.50), Mark{Price: 0.555}, time.Now()); ok {
		t.Error("expected context swing held at +11%")
	}
}

func TestPolicy_NoDecisionWithoutMark(t *testing.T) {
	p := newTestPolicy()

	if _, ok := p.Evaluate(swingPosition("generic", 0.50), Mark{}, time.Now()); ok {
		t.Error("expected no decision on a zero mark")
	}
}
