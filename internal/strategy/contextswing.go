package strategy

import (
	"fmt"

	"polysim/internal/market"
)

// ContextSwing takes longer-hold positions when the blended
// trend/momentum/sentiment context score clears its threshold, even if no
// single component is strong on its own.
type ContextSwing struct {
	threshold float64
}

func NewContextSwing(threshold float64) *ContextSwing {
	return &ContextSwing{threshold: threshold}
}

func (r *ContextSwing) Name() string { return "contextswing" }

func (r *ContextSwing) Evaluate(a market.Analysis) (Candidate, bool) {
	if !a.HasPrices {
		return Candidate{}, false
	}
	if a.ContextScore < r.threshold {
		return Candidate{}, false
	}

	outcome, price := outcomeFor(a, a.Bullish)

	return Candidate{
		MarketID:   a.MarketID,
		Title:      a.Title,
		Outcome:    outcome,
		Price:      price,
		Strategy:   r.Name(),
		TradeType:  TradeSwing,
		Priority:   a.Score + a.ContextScore*20,
		Confidence: a.ContextScore,
		Reason:     fmt.Sprintf("context swing: blended score %.2f (trend %.2f, momentum %.2f%%, sentiment %.2f)", a.ContextScore, a.Trend, a.Momentum, a.Sentiment),
	}, true
}
