package journal

import (
	"database/sql"
	"fmt"
	"time"

	"polysim/internal/ledger"
)

// Recorder persists ledger events so performance reporting survives
// restarts. The in-memory ledger stays authoritative; journal failures
// are reported to the caller, logged there, and never abort a cycle.
type Recorder struct {
	db *sql.DB
}

func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

// RecordTrade inserts one completed BUY or SELL ledger entry.
func (r *Recorder) RecordTrade(t ledger.Trade) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO sim_trades (id, market_id, market_title, action, outcome, price, size, strategy, reason, profit, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.MarketID, t.MarketTitle, t.Action, t.Outcome,
		t.Price, t.Size, t.Strategy, t.Reason, t.Profit,
		t.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting sim_trade: %w", err)
	}
	return nil
}

// SnapshotBankroll records the portfolio summary for drawdown analysis.
func (r *Recorder) SnapshotBankroll(s ledger.Stats) error {
	_, err := r.db.Exec(`
		INSERT INTO bankroll_snapshots (balance, realized_profit, unrealized_profit, net_worth, open_positions)
		VALUES (?, ?, ?, ?, ?)`,
		s.Balance, s.RealizedProfit, s.UnrealizedProfit, s.NetWorth, s.ActivePositions,
	)
	if err != nil {
		return fmt.Errorf("inserting bankroll snapshot: %w", err)
	}
	return nil
}
