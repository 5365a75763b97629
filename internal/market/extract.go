package market

// PricePair holds the normalized per-outcome prices for a binary market.
// Both values are strictly inside (0, 1). The pair is not required to sum
// to 1; the gap between the sum and 1 is what the arbitrage heuristic
// trades on.
type PricePair struct {
	Yes float64 `json:"yes"`
	No  float64 `json:"no"`
}

// Sum returns the combined yes+no price.
func (p PricePair) Sum() float64 { return p.Yes + p.No }

// ForOutcome returns the price of the requested side.
func (p PricePair) ForOutcome(outcome string) float64 {
	if outcome == "No" {
		return p.No
	}
	return p.Yes
}

// singleSidedKeys are tried in order when no outcome-price table is
// present; the value is read as the YES price and NO is its complement.
var singleSidedKeys = []string{"newestPrice", "lastTradePrice", "price", "bestBid"}

// ExtractPrices derives the (yes, no) price pair from a raw record.
//
// It tries, in order: an explicit outcome-price table, then a single-sided
// price field with the other side computed as the complement. When neither
// yields prices inside (0, 1) it returns ok == false, meaning "no price
// data this cycle". Callers must skip the market in that case — never
// substitute a 0.5/0.5 default, which would fabricate a signal out of
// missing data.
func ExtractPrices(rec Record) (PricePair, bool) {
	if prices := rec.numSlice("outcomePrices"); len(prices) >= 2 {
		yes, no := prices[0], prices[1]
		if openUnit(yes) && openUnit(no) {
			return PricePair{Yes: yes, No: no}, true
		}
	}

	for _, key := range singleSidedKeys {
		v, ok := rec[key]
		if !ok {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			continue
		}
		if f > 0 && f < 1 {
			return PricePair{Yes: f, No: 1 - f}, true
		}
	}

	return PricePair{}, false
}

func openUnit(f float64) bool { return f > 0 && f < 1 }
