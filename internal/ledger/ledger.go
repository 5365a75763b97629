package ledger

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"polysim/internal/config"
	"polysim/internal/market"
	"polysim/internal/strategy"
)

// Key identifies an open position. At most one open position may exist
// per key at any time.
type Key struct {
	MarketID string
	Outcome  string
}

// Position is an open simulated position. Size is the currency amount
// committed, not a share count. Positions are owned exclusively by the
// Ledger; snapshots hand out copies only.
type Position struct {
	MarketID      string             `json:"marketId"`
	MarketTitle   string             `json:"marketTitle"`
	Outcome       string             `json:"outcome"`
	EntryPrice    float64            `json:"entryPrice"`
	CurrentPrice  float64            `json:"currentPrice"`
	Size          float64            `json:"size"`
	UnrealizedPnL float64            `json:"unrealizedPnl"`
	Strategy      string             `json:"strategy"`
	TradeType     strategy.TradeType `json:"tradeType"`
	EntryTime     time.Time          `json:"entryTime"`
}

// Key returns the position's ledger key.
func (p Position) Key() Key {
	return Key{MarketID: p.MarketID, Outcome: p.Outcome}
}

// CurrentValue is what closing at the current mark would credit back.
func (p Position) CurrentValue() float64 {
	if p.EntryPrice <= 0 {
		return p.Size
	}
	return p.Size * (p.CurrentPrice / p.EntryPrice)
}

// Trade is one immutable ledger entry: a BUY on open, a SELL on close.
// Profit is set only on SELL.
type Trade struct {
	ID          string    `json:"id"`
	MarketID    string    `json:"marketId"`
	MarketTitle string    `json:"marketTitle"`
	Timestamp   time.Time `json:"timestamp"`
	Action      string    `json:"action"` // "BUY" or "SELL"
	Outcome     string    `json:"outcome"`
	Price       float64   `json:"price"`
	Size        float64   `json:"size"`
	Strategy    string    `json:"strategy"`
	Reason      string    `json:"reason"`
	Profit      *float64  `json:"profit"`
}

// PnLPoint is one sampled total-P&L observation.
type PnLPoint struct {
	At       time.Time `json:"timestamp"`
	TotalPnL float64   `json:"totalPnl"`
}

// Stats is the read-only portfolio summary exposed to the API layer.
type Stats struct {
	Balance          float64 `json:"balance"`
	InitialBalance   float64 `json:"initialBalance"`
	RealizedProfit   float64 `json:"realizedProfit"`
	UnrealizedProfit float64 `json:"unrealizedProfit"`
	TotalProfit      float64 `json:"totalProfit"`
	NetWorth         float64 `json:"netWorth"`
	TotalTrades      int     `json:"totalTrades"`
	WinningTrades    int     `json:"winningTrades"`
	LosingTrades     int     `json:"losingTrades"`
	ActivePositions  int     `json:"activePositions"`
	WinRate          float64 `json:"winRate"`
}

// Ledger owns the virtual balance, open positions, trade history and P&L
// series. A single mutex serializes every mutation: concurrent opens,
// closes and re-marks from the three scheduling loops must never
// interleave on balance or a position key. No network or disk I/O ever
// happens under the lock.
type Ledger struct {
	cfg config.LedgerConfig

	mu             sync.Mutex
	balance        float64
	initialBalance float64
	realized       float64
	wins           int
	losses         int
	positions      map[Key]*Position
	trades         []Trade // newest first, capped
	pnl            []PnLPoint
	lastPnLSample  time.Time
}

func New(cfg config.LedgerConfig, initialBalance float64) *Ledger {
	return &Ledger{
		cfg:            cfg,
		balance:        initialBalance,
		initialBalance: initialBalance,
		positions:      make(map[Key]*Position),
	}
}

// Open opens a position, debiting the balance and appending a BUY trade.
// Invalid opens — insufficient balance, entry price outside the tradable
// band, duplicate key, non-positive size — are rejected before any state
// changes and reported as a logged no-op, never a partial mutation.
func (l *Ledger) Open(cand strategy.Candidate, size float64, now time.Time) (Trade, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := Key{MarketID: cand.MarketID, Outcome: cand.Outcome}

	switch {
	case size <= 0 || size > l.balance:
		slog.Info("open rejected: insufficient balance",
			"market", cand.MarketID, "size", size, "balance", l.balance)
		return Trade{}, false
	case cand.Price < l.cfg.MinEntryPrice || cand.Price > l.cfg.MaxEntryPrice:
		slog.Info("open rejected: price outside tradable band",
			"market", cand.MarketID, "price", cand.Price)
		return Trade{}, false
	}
	if _, exists := l.positions[key]; exists {
		slog.Info("open rejected: position already held",
			"market", cand.MarketID, "outcome", cand.Outcome)
		return Trade{}, false
	}

	l.balance -= size
	l.positions[key] = &Position{
		MarketID:     cand.MarketID,
		MarketTitle:  cand.Title,
		Outcome:      cand.Outcome,
		EntryPrice:   cand.Price,
		CurrentPrice: cand.Price,
		Size:         size,
		Strategy:     cand.Strategy,
		TradeType:    cand.TradeType,
		EntryTime:    now,
	}

	trade := Trade{
		ID:          uuid.NewString(),
		MarketID:    cand.MarketID,
		MarketTitle: cand.Title,
		Timestamp:   now,
		Action:      "BUY",
		Outcome:     cand.Outcome,
		Price:       cand.Price,
		Size:        size,
		Strategy:    cand.Strategy,
		Reason:      cand.Reason,
	}
	l.appendTrade(trade)

	slog.Info("position opened",
		"market", cand.MarketID,
		"outcome", cand.Outcome,
		"price", cand.Price,
		"size", size,
		"strategy", cand.Strategy,
		"trade_type", cand.TradeType,
	)
	return trade, true
}

// Close closes the position at exitPrice, crediting the current value
// back and appending a SELL trade with the realized profit. Closing an
// absent key is a no-op, so racing exit evaluations cannot double-close.
func (l *Ledger) Close(key Key, exitPrice float64, reason string, now time.Time) (Trade, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[key]
	if !ok {
		return Trade{}, false
	}
	if pos.EntryPrice <= 0 {
		// Should be unreachable given the open-side band check.
		delete(l.positions, key)
		return Trade{}, false
	}

	currentValue := pos.Size * (exitPrice / pos.EntryPrice)
	profit := currentValue - pos.Size

	l.balance += currentValue
	l.realized += profit
	if profit > 0 {
		l.wins++
	} else {
		l.losses++
	}
	delete(l.positions, key)

	trade := Trade{
		ID:          uuid.NewString(),
		MarketID:    pos.MarketID,
		MarketTitle: pos.MarketTitle,
		Timestamp:   now,
		Action:      "SELL",
		Outcome:     pos.Outcome,
		Price:       exitPrice,
		Size:        pos.Size,
		Strategy:    pos.Strategy,
		Reason:      reason,
		Profit:      &profit,
	}
	l.appendTrade(trade)

	slog.Info("position closed",
		"market", pos.MarketID,
		"outcome", pos.Outcome,
		"entry", pos.EntryPrice,
		"exit", exitPrice,
		"profit", profit,
		"reason", reason,
	)
	return trade, true
}

// UpdatePrices re-marks every open position from the latest extracted
// prices. Markets whose extraction failed this cycle are simply absent
// from the lookup and keep their last mark — a stale price is better than
// a fabricated one. A total-P&L point is sampled when the configured
// interval has elapsed.
func (l *Ledger) UpdatePrices(prices map[string]market.PricePair, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, pos := range l.positions {
		pair, ok := prices[pos.MarketID]
		if !ok {
			continue
		}
		pos.CurrentPrice = pair.ForOutcome(pos.Outcome)
		pos.UnrealizedPnL = pos.Size*(pos.CurrentPrice/pos.EntryPrice) - pos.Size
	}

	l.samplePnL(now)
}

// samplePnL appends a (time, total P&L) point at most once per sample
// interval. Caller holds the lock.
func (l *Ledger) samplePnL(now time.Time) {
	if !l.lastPnLSample.IsZero() && now.Sub(l.lastPnLSample) < l.cfg.PnLSampleInterval.Duration {
		return
	}
	l.lastPnLSample = now

	var unrealized float64
	for _, pos := range l.positions {
		unrealized += pos.UnrealizedPnL
	}

	l.pnl = append(l.pnl, PnLPoint{At: now, TotalPnL: l.realized + unrealized})
	if len(l.pnl) > l.cfg.PnLHistoryCap {
		l.pnl = l.pnl[len(l.pnl)-l.cfg.PnLHistoryCap:]
	}
}

// appendTrade inserts at the head and evicts past the retention cap.
// Caller holds the lock.
func (l *Ledger) appendTrade(t Trade) {
	l.trades = append([]Trade{t}, l.trades...)
	if len(l.trades) > l.cfg.TradeHistoryCap {
		l.trades = l.trades[:l.cfg.TradeHistoryCap]
	}
}

// Holds reports whether an open position exists for the pair. Passed to
// the opportunity selector as its dedupe check.
func (l *Ledger) Holds(marketID, outcome string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.positions[Key{MarketID: marketID, Outcome: outcome}]
	return ok
}

// Positions returns copies of all open positions.
func (l *Ledger) Positions() []Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Position, 0, len(l.positions))
	for _, pos := range l.positions {
		out = append(out, *pos)
	}
	return out
}

// RecentTrades returns up to limit trades, newest first.
func (l *Ledger) RecentTrades(limit int) []Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.trades)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Trade, n)
	copy(out, l.trades[:n])
	return out
}

// PnLHistory returns up to limit of the most recent P&L samples, oldest
// first.
func (l *Ledger) PnLHistory(limit int) []PnLPoint {
	l.mu.Lock()
	defer l.mu.Unlock()

	pts := l.pnl
	if limit > 0 && len(pts) > limit {
		pts = pts[len(pts)-limit:]
	}
	out := make([]PnLPoint, len(pts))
	copy(out, pts)
	return out
}

// Stats summarizes the portfolio at a consistent observation point.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	var unrealized, positionValue float64
	for _, pos := range l.positions {
		unrealized += pos.UnrealizedPnL
		positionValue += pos.CurrentValue()
	}

	completed := l.wins + l.losses
	var winRate float64
	if completed > 0 {
		winRate = float64(l.wins) / float64(completed) * 100
	}

	return Stats{
		Balance:          l.balance,
		InitialBalance:   l.initialBalance,
		RealizedProfit:   l.realized,
		UnrealizedProfit: unrealized,
		TotalProfit:      l.realized + unrealized,
		NetWorth:         l.balance + positionValue,
		TotalTrades:      completed,
		WinningTrades:    l.wins,
		LosingTrades:     l.losses,
		ActivePositions:  len(l.positions),
		WinRate:          winRate,
	}
}
