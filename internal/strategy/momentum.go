package strategy

import (
	"fmt"
	"math"

	"polysim/internal/market"
)

// Momentum rides a directional price move whose magnitude clears the
// configured threshold. Entries are sized for a quick exit, so these open
// as scalps.
type Momentum struct {
	threshold float64
}

func NewMomentum(threshold float64) *Momentum {
	return &Momentum{threshold: threshold}
}

func (r *Momentum) Name() string { return "momentum" }

func (r *Momentum) Evaluate(a market.Analysis) (Candidate, bool) {
	if !a.HasPrices {
		return Candidate{}, false
	}

	mag := math.Abs(a.Momentum)
	if mag < r.threshold && math.Abs(a.Trend) < r.threshold/2 {
		return Candidate{}, false
	}

	outcome, price := outcomeFor(a, a.Bullish)
	dir := "bearish"
	if a.Bullish {
		dir = "bullish"
	}

	return Candidate{
		MarketID:   a.MarketID,
		Title:      a.Title,
		Outcome:    outcome,
		Price:      price,
		Strategy:   r.Name(),
		TradeType:  TradeScalp,
		Priority:   a.Score,
		Confidence: math.Min(1, mag/(r.threshold*4)),
		Reason:     fmt.Sprintf("%s momentum %.2f%% with trend %.2f", dir, a.Momentum, a.Trend),
	}, true
}
