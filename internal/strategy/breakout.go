package strategy

import (
	"fmt"
	"math"

	"polysim/internal/market"
)

// VolumeBreakout pairs a directional move with elevated recent volume:
// momentum confirmed by fresh money. Opens as a scalp.
type VolumeBreakout struct {
	momentumFloor float64
	volumeFrac    float64 // min volume24h as a fraction of total volume
}

func NewVolumeBreakout(momentumFloor, volumeFrac float64) *VolumeBreakout {
	return &VolumeBreakout{momentumFloor: momentumFloor, volumeFrac: volumeFrac}
}

func (r *VolumeBreakout) Name() string { return "volumebreakout" }

func (r *VolumeBreakout) Evaluate(a market.Analysis) (Candidate, bool) {
	if !a.HasPrices {
		return Candidate{}, false
	}
	if math.Abs(a.Momentum) < r.momentumFloor {
		return Candidate{}, false
	}
	if a.Volume <= 0 || a.Volume24h <= 0 {
		return Candidate{}, false
	}
	if a.Volume24h < a.Volume*r.volumeFrac {
		return Candidate{}, false
	}

	outcome, price := outcomeFor(a, a.Bullish)

	return Candidate{
		MarketID:   a.MarketID,
		Title:      a.Title,
		Outcome:    outcome,
		Price:      price,
		Strategy:   r.Name(),
		TradeType:  TradeScalp,
		Priority:   a.Score + a.VolumeScore,
		Confidence: math.Min(1, a.Volume24h/a.Volume),
		Reason:     fmt.Sprintf("volume breakout: momentum %.2f%% on 24h volume %.0f", a.Momentum, a.Volume24h),
	}, true
}
