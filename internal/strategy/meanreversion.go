package strategy

import (
	"fmt"
	"math"

	"polysim/internal/market"
)

// MeanReversion bets that prices far from 0.5 drift back toward it when
// the recent trend already points that way. Priority grows with how
// extreme the price is: the further out, the more room to revert.
type MeanReversion struct {
	minDistance float64
}

func NewMeanReversion(minDistance float64) *MeanReversion {
	return &MeanReversion{minDistance: minDistance}
}

func (r *MeanReversion) Name() string { return "meanreversion" }

func (r *MeanReversion) Evaluate(a market.Analysis) (Candidate, bool) {
	if !a.HasPrices {
		return Candidate{}, false
	}

	dist := math.Abs(a.Prices.Yes - 0.5)
	if dist < r.minDistance {
		return Candidate{}, false
	}

	// Reverting means moving toward 0.5: buy Yes when the price is low,
	// No when it is high. Require the trend to agree with the reversion.
	reversionBullish := a.Prices.Yes < 0.5
	if reversionBullish && a.Trend <= 0 {
		return Candidate{}, false
	}
	if !reversionBullish && a.Trend >= 0 {
		return Candidate{}, false
	}

	outcome, price := outcomeFor(a, reversionBullish)

	return Candidate{
		MarketID:   a.MarketID,
		Title:      a.Title,
		Outcome:    outcome,
		Price:      price,
		Strategy:   r.Name(),
		TradeType:  TradeSwing,
		Priority:   a.Score + dist*100,
		Confidence: math.Min(1, dist*2),
		Reason:     fmt.Sprintf("mean reversion: yes at %.2f is %.2f from midpoint, trend %.2f agrees", a.Prices.Yes, dist, a.Trend),
	}, true
}
