package strategy

import (
	"fmt"

	"polysim/internal/market"
)

// Arbitrage targets markets whose yes+no prices sum to materially less
// than the 1.0 payout. The mispricing pays regardless of resolution, so
// it always outranks directional signals.
type Arbitrage struct{}

func NewArbitrage() *Arbitrage { return &Arbitrage{} }

func (r *Arbitrage) Name() string { return "arbitrage" }

func (r *Arbitrage) Evaluate(a market.Analysis) (Candidate, bool) {
	if !a.HasPrices || a.Arbitrage == nil {
		return Candidate{}, false
	}

	// Buy the cheaper side: it carries the larger share of the discount.
	outcome, price := "Yes", a.Prices.Yes
	if a.Prices.No < a.Prices.Yes {
		outcome, price = "No", a.Prices.No
	}

	profit := *a.Arbitrage

	return Candidate{
		MarketID:   a.MarketID,
		Title:      a.Title,
		Outcome:    outcome,
		Price:      price,
		Strategy:   r.Name(),
		TradeType:  TradeSwing,
		Priority:   100 + profit,
		Confidence: 1.0,
		Reason:     fmt.Sprintf("arbitrage: yes+no sums to %.3f, %.2f%% guaranteed edge", a.Prices.Sum(), profit),
	}, true
}
