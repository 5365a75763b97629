package ledger

// PositionSize computes the stake for a new position: a small base
// fraction of the current balance scaled up to double by signal
// confidence, floored at the minimum trade size and capped at a
// balance-relative maximum. The floor kills dust-sized trades; the cap
// bounds concentration in any one market.
//
// Returns 0 when the balance cannot support even the minimum trade, which
// callers treat as "don't open".
func (l *Ledger) PositionSize(confidence float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	size := l.balance * l.cfg.BaseSizePct * (1 + confidence)

	if maxSize := l.balance * l.cfg.MaxSizePct; size > maxSize {
		size = maxSize
	}
	if size < l.cfg.MinTradeSize {
		size = l.cfg.MinTradeSize
	}
	if size > l.balance {
		return 0
	}
	return size
}
