package strategy

import (
	"log/slog"
	"sort"

	"polysim/internal/config"
	"polysim/internal/market"
)

// HasPosition reports whether an open position already exists for the
// (market, outcome) pair. Provided by the ledger so the selector never
// recommends doubling up.
type HasPosition func(marketID, outcome string) bool

// Selector converts analyzed markets into a ranked candidate list by
// consulting its rules in priority order, first match per market wins.
type Selector struct {
	rules []Rule
}

// NewSelector builds the standard rule chain from config. Order matters:
// arbitrage beats directional momentum, which beats mean reversion, and
// so on down to the generic catch-all.
func NewSelector(cfg config.SelectorConfig) *Selector {
	return &Selector{
		rules: []Rule{
			NewArbitrage(),
			NewMomentum(cfg.MomentumThreshold),
			NewMeanReversion(cfg.MeanRevDistance),
			NewVolumeBreakout(cfg.MomentumThreshold, cfg.BreakoutVolumeFrac),
			NewContextSwing(cfg.ContextThreshold),
			NewGeneric(cfg.GenericMinScore, cfg.MinVolume, cfg.MinLiquidity),
		},
	}
}

// NewSelectorWithRules builds a selector over an explicit rule chain.
func NewSelectorWithRules(rules ...Rule) *Selector {
	return &Selector{rules: rules}
}

// Select emits at most one candidate per market not already holding a
// position on its preferred direction, sorted by priority descending and
// capped at limit (0 means no cap).
func (s *Selector) Select(analyses []market.Analysis, held HasPosition, limit int) []Candidate {
	var candidates []Candidate

	for _, a := range analyses {
		cand, ok := s.evaluate(a)
		if !ok {
			continue
		}
		if held != nil && held(cand.MarketID, cand.Outcome) {
			continue
		}
		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	slog.Debug("opportunity selection complete",
		"analyzed", len(analyses),
		"candidates", len(candidates),
	)
	return candidates
}

func (s *Selector) evaluate(a market.Analysis) (Candidate, bool) {
	for _, rule := range s.rules {
		if cand, ok := rule.Evaluate(a); ok {
			return cand, true
		}
	}
	return Candidate{}, false
}
