package market

import (
	"math"
	"time"

	"polysim/internal/config"
)

// Analysis is the per-market trading signal recomputed each cycle.
//
// Score is always non-negative: it measures how interesting the market is,
// while Bullish carries the direction separately. Folding direction into
// the score's sign would make scores incomparable across markets.
type Analysis struct {
	MarketID  string  `json:"marketId"`
	Title     string  `json:"marketTitle"`
	Volume    float64 `json:"volume"`
	Volume24h float64 `json:"volume24h"`
	Liquidity float64 `json:"liquidity"`

	// HasPrices is false when price extraction failed this cycle; such an
	// analysis carries only volume/liquidity interest and must never be
	// traded on.
	HasPrices bool      `json:"hasPrices"`
	Prices    PricePair `json:"prices"`

	Trend     float64 `json:"trend"`
	Momentum  float64 `json:"momentum"`
	Sentiment float64 `json:"sentiment"`
	Score     float64 `json:"score"`
	Bullish   bool    `json:"bullish"`

	// Arbitrage is the guaranteed profit percentage from buying both
	// sides, present only when yes+no is materially below 1 after fees.
	Arbitrage *float64 `json:"arbitrageOpportunity,omitempty"`

	VolumeScore  float64 `json:"volumeScore"`
	ContextScore float64 `json:"contextScore"`

	AnalyzedAt time.Time `json:"analyzedAt"`
}

// Analyzer scores markets from their current prices, rolling price
// history, and volume/liquidity figures.
type Analyzer struct {
	cfg     config.AnalyzerConfig
	history *History
}

func NewAnalyzer(cfg config.AnalyzerConfig, history *History) *Analyzer {
	return &Analyzer{cfg: cfg, history: history}
}

// Analyze produces a fresh Analysis for one market record.
//
// When prices are unextractable it returns a degenerate analysis scored
// only on volume and liquidity: the market keeps its slot in the analysis
// set (so stale entries age out naturally) but never produces a trade.
func (a *Analyzer) Analyze(rec Record, now time.Time) Analysis {
	res := Analysis{
		MarketID:   rec.ID(),
		Title:      rec.Title(),
		Volume:     rec.Volume(),
		Volume24h:  rec.Volume24h(),
		Liquidity:  rec.Liquidity(),
		AnalyzedAt: now,
	}

	prices, ok := ExtractPrices(rec)
	if !ok {
		res.VolumeScore = a.volumeScore(res.Volume)
		res.Score = res.VolumeScore + a.liquidityScore(res.Liquidity)
		return res
	}

	res.HasPrices = true
	res.Prices = prices

	a.history.Append(res.MarketID, now, prices.Yes)
	window := a.history.Recent(res.MarketID)

	res.Momentum = a.momentum(window)
	res.Trend = a.trend(window)
	res.Sentiment = a.sentiment(res.Momentum, res.Volume)
	res.Arbitrage = a.arbitrage(prices)
	res.VolumeScore = a.volumeScore(res.Volume)
	res.ContextScore = a.contextScore(res.Trend, res.Momentum, res.Sentiment)
	res.Bullish = direction(res.Momentum, res.Trend, prices.Yes)
	res.Score = a.score(res)

	return res
}

// momentum is the percentage price change across the most recent short
// window. Zero until at least two samples exist.
func (a *Analyzer) momentum(window []Observation) float64 {
	if len(window) < 2 {
		return 0
	}
	if len(window) > a.cfg.MomentumWindow {
		window = window[len(window)-a.cfg.MomentumWindow:]
	}
	first := window[0].Price
	last := window[len(window)-1].Price
	if first <= 0 {
		return 0
	}
	return (last - first) / first * 100
}

// trend compares the short-window moving average against the
// medium-window one, scaled and clamped to [-1, 1]. Zero until the short
// window is full.
func (a *Analyzer) trend(window []Observation) float64 {
	if len(window) < a.cfg.TrendShortWindow {
		return 0
	}

	short := movingAvg(window, a.cfg.TrendShortWindow)
	medium := movingAvg(window, a.cfg.TrendMediumWindow)
	if medium <= 0 {
		return 0
	}

	t := (short - medium) / medium * 10
	return clamp(t, -1, 1)
}

// sentiment blends a momentum-derived base with a volume weight: heavy
// volume amplifies the move's conviction, thin volume discounts it.
func (a *Analyzer) sentiment(momentum, volume float64) float64 {
	base := 0.5 + (momentum/100)*2
	volumeFactor := math.Min(1, volume/a.cfg.SentimentVolNorm)
	return clamp(base*(0.7+0.3*volumeFactor), 0, 1)
}

// arbitrage reports the guaranteed profit percentage when buying both
// sides costs materially less than the 1.0 payout, after the fee buffer.
func (a *Analyzer) arbitrage(prices PricePair) *float64 {
	sum := prices.Sum()
	if sum >= a.cfg.ArbFeeThreshold {
		return nil
	}
	profit := (1 - sum) * 100
	if profit < a.cfg.ArbMinProfitPct {
		return nil
	}
	return &profit
}

func (a *Analyzer) contextScore(trend, momentum, sentiment float64) float64 {
	return 0.4*math.Abs(trend) + 0.3*math.Min(1, math.Abs(momentum)/5) + 0.3*sentiment
}

// score aggregates the independent sub-scores into the non-negative
// interest level. Arbitrage always lands in a fixed high band above any
// directional signal.
func (a *Analyzer) score(res Analysis) float64 {
	if res.Arbitrage != nil {
		boost := math.Min(a.cfg.ArbScoreSpan, *res.Arbitrage*4)
		return a.cfg.ArbScoreBase + boost
	}

	score := a.cfg.BaseScore
	score += res.VolumeScore

	if m := math.Abs(res.Momentum); m >= a.cfg.MomentumFloor {
		score += math.Min(25, m*5)
	}
	if t := math.Abs(res.Trend); t >= a.cfg.TrendFloor {
		score += math.Min(20, t*20)
	}

	score += a.liquidityScore(res.Liquidity)
	score += meanReversionBonus(res.Prices.Yes)

	return score
}

// volumeScore rewards adequate traded volume, up to 15 points. A volume
// of exactly zero means "unknown" upstream and contributes nothing either
// way.
func (a *Analyzer) volumeScore(volume float64) float64 {
	if volume <= 0 {
		return 0
	}
	return math.Min(15, volume/a.cfg.AdequateVolume*15)
}

func (a *Analyzer) liquidityScore(liquidity float64) float64 {
	if liquidity <= 0 {
		return 0
	}
	return math.Min(10, liquidity/a.cfg.AdequateLiquidity*10)
}

// meanReversionBonus grows in tiers the further the YES price sits from
// 0.5. Markets near the extremes have the most room to snap back, so the
// bonus is stepped rather than linear.
func meanReversionBonus(priceYes float64) float64 {
	dist := math.Abs(priceYes - 0.5)
	switch {
	case dist > 0.40:
		return 20
	case dist > 0.30:
		return 12
	case dist > 0.20:
		return 6
	default:
		return 0
	}
}

// direction resolves bullish/bearish from momentum first, trend second,
// and finally from which side of 0.5 the price sits.
func direction(momentum, trend, priceYes float64) bool {
	if momentum != 0 {
		return momentum > 0
	}
	if trend != 0 {
		return trend > 0
	}
	return priceYes < 0.5
}

// movingAvg averages the last n observations (or all of them when fewer).
func movingAvg(window []Observation, n int) float64 {
	if len(window) == 0 {
		return 0
	}
	if len(window) > n {
		window = window[len(window)-n:]
	}
	var sum float64
	for _, obs := range window {
		sum += obs.Price
	}
	return sum / float64(len(window))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
