package performance

import (
	"database/sql"
	"fmt"
	"math"
)

// Tracker computes performance metrics from the trade journal.
type Tracker struct {
	db *sql.DB
}

func NewTracker(db *sql.DB) *Tracker {
	return &Tracker{db: db}
}

// Report contains all performance metrics.
type Report struct {
	TotalTrades    int
	ClosedTrades   int
	TotalWagered   float64
	TotalPnL       float64
	ROI            float64
	WinRate        float64
	CurrentBalance float64
	PeakNetWorth   float64
	MaxDrawdown    float64
	StrategyStats  map[string]StrategyStats
}

// StrategyStats contains per-strategy performance.
type StrategyStats struct {
	TradeCount int
	Wagered    float64
	PnL        float64
	ROI        float64
	WinRate    float64
}

// Generate computes the full performance report.
func (t *Tracker) Generate() (*Report, error) {
	r := &Report{
		StrategyStats: make(map[string]StrategyStats),
	}

	if err := t.computeOverall(r); err != nil {
		return nil, fmt.Errorf("computing overall stats: %w", err)
	}
	if err := t.computeStrategyStats(r); err != nil {
		return nil, fmt.Errorf("computing strategy stats: %w", err)
	}
	if err := t.computeDrawdown(r); err != nil {
		return nil, fmt.Errorf("computing drawdown: %w", err)
	}

	return r, nil
}

func (t *Tracker) computeOverall(r *Report) error {
	row := t.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(size), 0)
		FROM sim_trades WHERE action = 'BUY'`)
	if err := row.Scan(&r.TotalTrades, &r.TotalWagered); err != nil {
		return err
	}

	row = t.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(profit), 0)
		FROM sim_trades WHERE action = 'SELL'`)
	var closed int
	var totalPnL float64
	if err := row.Scan(&closed, &totalPnL); err != nil {
		return err
	}
	r.ClosedTrades = closed
	r.TotalPnL = totalPnL

	if r.TotalWagered > 0 {
		r.ROI = r.TotalPnL / r.TotalWagered
	}

	if closed > 0 {
		row = t.db.QueryRow(`SELECT COUNT(*) FROM sim_trades WHERE action = 'SELL' AND profit > 0`)
		var wins int
		if err := row.Scan(&wins); err != nil {
			return err
		}
		r.WinRate = float64(wins) / float64(closed)
	}

	return nil
}

func (t *Tracker) computeStrategyStats(r *Report) error {
	rows, err := t.db.Query(`
		SELECT strategy,
		       COALESCE(SUM(CASE WHEN action = 'BUY' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN action = 'BUY' THEN size ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN action = 'SELL' THEN profit ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN action = 'SELL' AND profit > 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN action = 'SELL' THEN 1 ELSE 0 END), 0)
		FROM sim_trades GROUP BY strategy`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var stats StrategyStats
		var wins, closed int
		if err := rows.Scan(&name, &stats.TradeCount, &stats.Wagered, &stats.PnL, &wins, &closed); err != nil {
			return err
		}
		if stats.Wagered > 0 {
			stats.ROI = stats.PnL / stats.Wagered
		}
		if closed > 0 {
			stats.WinRate = float64(wins) / float64(closed)
		}
		r.StrategyStats[name] = stats
	}
	return rows.Err()
}

func (t *Tracker) computeDrawdown(r *Report) error {
	rows, err := t.db.Query(`SELECT net_worth FROM bankroll_snapshots ORDER BY snapshot_at ASC, id ASC`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var peak float64
	var maxDD float64
	for rows.Next() {
		var value float64
		if err := rows.Scan(&value); err != nil {
			return err
		}
		if value > peak {
			peak = value
		}
		if peak > 0 {
			dd := (peak - value) / peak
			maxDD = math.Max(maxDD, dd)
		}
	}
	r.PeakNetWorth = peak
	r.MaxDrawdown = maxDD
	return rows.Err()
}
