package market

import (
	"sync"
)

// AnalysisStore holds the current analysis per market, bounded in size.
// The scheduling loops write fresh analyses while snapshot readers copy
// under a shared lock.
type AnalysisStore struct {
	mu  sync.RWMutex
	cap int
	m   map[string]Analysis
}

func NewAnalysisStore(cap int) *AnalysisStore {
	if cap < 1 {
		cap = 1
	}
	return &AnalysisStore{
		cap: cap,
		m:   make(map[string]Analysis),
	}
}

// Put stores the analysis. A degenerate (price-less) analysis never
// replaces an existing priced one: missing data must not erase a real
// signal, only time may.
func (s *AnalysisStore) Put(a Analysis) {
	if a.MarketID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !a.HasPrices {
		if prior, ok := s.m[a.MarketID]; ok && prior.HasPrices {
			return
		}
	}
	s.m[a.MarketID] = a

	if len(s.m) > s.cap {
		s.evictStalest()
	}
}

// evictStalest removes the oldest analyses until the store is back under
// its cap. Caller holds the write lock.
func (s *AnalysisStore) evictStalest() {
	for len(s.m) > s.cap {
		var oldestID string
		for id, a := range s.m {
			if oldestID == "" || a.AnalyzedAt.Before(s.m[oldestID].AnalyzedAt) {
				oldestID = id
			}
		}
		delete(s.m, oldestID)
	}
}

// Get returns the current analysis for a market, if any.
func (s *AnalysisStore) Get(marketID string) (Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.m[marketID]
	return a, ok
}

// Snapshot returns a copy of every stored analysis.
func (s *AnalysisStore) Snapshot() []Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Analysis, 0, len(s.m))
	for _, a := range s.m {
		out = append(out, a)
	}
	return out
}

// Len reports how many analyses are stored.
func (s *AnalysisStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
