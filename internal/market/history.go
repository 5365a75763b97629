package market

import (
	"sync"
	"time"
)

// Observation is one sampled YES price for a market.
type Observation struct {
	At    time.Time
	Price float64
}

// History keeps a bounded per-market buffer of recent YES price
// observations. Trend and momentum are computed over these windows, so the
// buffer only ever needs the last few dozen samples; older ones are
// evicted as new observations arrive.
type History struct {
	mu     sync.Mutex
	cap    int
	series map[string][]Observation
}

func NewHistory(cap int) *History {
	if cap < 2 {
		cap = 2
	}
	return &History{
		cap:    cap,
		series: make(map[string][]Observation),
	}
}

// Append records a new observation for the market, evicting the oldest
// sample once the buffer is full.
func (h *History) Append(marketID string, at time.Time, price float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf := append(h.series[marketID], Observation{At: at, Price: price})
	if len(buf) > h.cap {
		buf = buf[len(buf)-h.cap:]
	}
	h.series[marketID] = buf
}

// Recent returns a copy of the market's observations, oldest first.
func (h *History) Recent(marketID string) []Observation {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf := h.series[marketID]
	out := make([]Observation, len(buf))
	copy(out, buf)
	return out
}

// Len reports how many observations are buffered for the market.
func (h *History) Len(marketID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.series[marketID])
}

// Retain drops buffers for markets not in the keep set. Called
// periodically so long-gone markets don't accumulate.
func (h *History) Retain(keep map[string]bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id := range h.series {
		if !keep[id] {
			delete(h.series, id)
		}
	}
}
