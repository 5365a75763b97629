package exit

import (
	"fmt"
	"math"
	"time"

	"polysim/internal/config"
	"polysim/internal/ledger"
	"polysim/internal/market"
	"polysim/internal/strategy"
)

// Mark carries the latest observed pricing for a position's market. Pair
// is set when both sides were extractable this cycle; the arbitrage exit
// needs it to see whether the mispricing has corrected.
type Mark struct {
	Price float64
	Pair  *market.PricePair
}

// Decision instructs the caller to close a position.
type Decision struct {
	ExitPrice float64
	Reason    string
}

// Policy evaluates open positions against trade-type and strategy
// specific exit rules. Conditions are checked in a fixed order and the
// first match wins; a universal fallback band guarantees every position
// has an applicable rule.
type Policy struct {
	cfg config.ExitConfig
}

func NewPolicy(cfg config.ExitConfig) *Policy {
	return &Policy{cfg: cfg}
}

// Evaluate returns a close decision when any exit condition fires.
func (p *Policy) Evaluate(pos ledger.Position, mark Mark, now time.Time) (Decision, bool) {
	if pos.EntryPrice <= 0 || mark.Price <= 0 {
		return Decision{}, false
	}

	profitPct := (mark.Price - pos.EntryPrice) / pos.EntryPrice

	if pos.TradeType == strategy.TradeScalp {
		return p.evaluateScalp(pos, mark, profitPct, now)
	}

	switch pos.Strategy {
	case "arbitrage":
		if d, ok := p.evaluateArbitrage(mark, profitPct); ok {
			return d, true
		}
	case "meanreversion":
		if d, ok := p.evaluateMeanReversion(pos, mark, profitPct); ok {
			return d, true
		}
	case "contextswing":
		if d, ok := band(mark, profitPct, p.cfg.ContextTakeProfit, p.cfg.ContextStopLoss); ok {
			return d, true
		}
	default:
		if d, ok := band(mark, profitPct, p.cfg.SwingTakeProfit, p.cfg.SwingStopLoss); ok {
			return d, true
		}
	}

	// Universal fallback: no strategy rule fired but the move is already
	// outside the widest acceptable band.
	return band(mark, profitPct, p.cfg.FinalTakeProfit, p.cfg.FinalStopLoss)
}

// evaluateScalp applies the tight scalp band and the hard holding-time
// limit: scalps are meant to resolve within hours, win or lose.
func (p *Policy) evaluateScalp(pos ledger.Position, mark Mark, profitPct float64, now time.Time) (Decision, bool) {
	switch {
	case profitPct >= p.cfg.ScalpTakeProfit:
		return decision(mark, "Scalp take profit (%+.2f%%)", profitPct*100), true
	case profitPct <= -p.cfg.ScalpStopLoss:
		return decision(mark, "Scalp stop loss (%+.2f%%)", profitPct*100), true
	case now.Sub(pos.EntryTime) >= p.cfg.ScalpMaxHold.Duration:
		return decision(mark, "Scalp max hold reached (%+.2f%%)", profitPct*100), true
	}
	return Decision{}, false
}

// evaluateArbitrage closes once the yes+no sum has corrected back toward
// 1 — the mispricing that justified the entry is gone — or when the
// modest profit target is hit first.
func (p *Policy) evaluateArbitrage(mark Mark, profitPct float64) (Decision, bool) {
	if mark.Pair != nil && mark.Pair.Sum() >= p.cfg.ArbCorrectedSum {
		return decision(mark, "Arbitrage corrected: yes+no at %.3f", mark.Pair.Sum()), true
	}
	if profitPct >= p.cfg.ArbTakeProfit {
		return decision(mark, "Arbitrage take profit (%+.2f%%)", profitPct*100), true
	}
	return Decision{}, false
}

// evaluateMeanReversion closes when the price has recovered the
// configured fraction of its entry-time distance from the 0.5 midpoint,
// or on the strategy's band.
func (p *Policy) evaluateMeanReversion(pos ledger.Position, mark Mark, profitPct float64) (Decision, bool) {
	entryDist := math.Abs(pos.EntryPrice - 0.5)
	currentDist := math.Abs(mark.Price - 0.5)
	if entryDist > 0 && currentDist <= entryDist*(1-p.cfg.MeanRevRecovery) {
		return decision(mark, "Mean reversion target: price back to %.2f", mark.Price), true
	}
	return band(mark, profitPct, p.cfg.MeanRevTakeProfit, p.cfg.MeanRevStopLoss)
}

// band applies a take-profit / stop-loss pair.
func band(mark Mark, profitPct, takeProfit, stopLoss float64) (Decision, bool) {
	switch {
	case profitPct >= takeProfit:
		return decision(mark, "Take profit (%+.2f%%)", profitPct*100), true
	case profitPct <= -stopLoss:
		return decision(mark, "Stop loss (%+.2f%%)", profitPct*100), true
	}
	return Decision{}, false
}

func decision(mark Mark, format string, args ...any) Decision {
	return Decision{ExitPrice: mark.Price, Reason: fmt.Sprintf(format, args...)}
}
