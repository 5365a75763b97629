package strategy

import (
	"polysim/internal/market"
)

// TradeType governs exit thresholds and holding-time limits.
type TradeType string

const (
	TradeScalp TradeType = "scalp" // short horizon, tight bands, hard time limit
	TradeSwing TradeType = "swing" // longer hold, wider bands
)

// Candidate is a ranked, strategy-tagged trade recommendation for one
// market. At most one candidate is emitted per market per cycle.
type Candidate struct {
	MarketID   string
	Title      string
	Outcome    string  // "Yes" or "No"
	Price      float64 // entry price of the chosen outcome
	Strategy   string
	TradeType  TradeType
	Priority   float64 // descending sort key across candidates
	Confidence float64 // 0-1, scales position size
	Reason     string
}

// Rule evaluates a single analyzed market and may emit a candidate.
// Rules are consulted in a fixed order and the first match wins.
type Rule interface {
	Name() string
	Evaluate(a market.Analysis) (Candidate, bool)
}

// outcomeFor maps a direction onto the outcome label and its price.
func outcomeFor(a market.Analysis, bullish bool) (string, float64) {
	if bullish {
		return "Yes", a.Prices.Yes
	}
	return "No", a.Prices.No
}
