package strategy

import (
	"fmt"

	"polysim/internal/market"
)

// Generic is the catch-all rule: any market with a non-trivial score and
// adequate volume/liquidity is worth a small swing position. Direction
// comes from the analysis, which itself falls back to whichever side of
// 0.5 the price sits when trend and momentum are silent.
type Generic struct {
	minScore     float64
	minVolume    float64
	minLiquidity float64
}

func NewGeneric(minScore, minVolume, minLiquidity float64) *Generic {
	return &Generic{minScore: minScore, minVolume: minVolume, minLiquidity: minLiquidity}
}

func (r *Generic) Name() string { return "generic" }

func (r *Generic) Evaluate(a market.Analysis) (Candidate, bool) {
	if !a.HasPrices {
		return Candidate{}, false
	}
	if a.Score < r.minScore {
		return Candidate{}, false
	}
	if a.Volume < r.minVolume && a.Liquidity < r.minLiquidity {
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
		TradeType:  TradeSwing,
		Priority:   a.Score,
		Confidence: 0.3,
		Reason:     fmt.Sprintf("%s signal: score %.1f (volume %.0f, trend %.2f)", dir, a.Score, a.Volume, a.Trend),
	}, true
}
