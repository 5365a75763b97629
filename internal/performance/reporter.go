package performance

import (
	"log/slog"
)

// LogReport logs the performance report as structured JSON.
func LogReport(r *Report) {
	slog.Info("=== PERFORMANCE REPORT ===",
		"total_trades", r.TotalTrades,
		"closed_trades", r.ClosedTrades,
		"total_wagered", r.TotalWagered,
		"total_pnl", r.TotalPnL,
		"roi", r.ROI,
		"win_rate", r.WinRate,
		"current_balance", r.CurrentBalance,
		"peak_net_worth", r.PeakNetWorth,
		"max_drawdown", r.MaxDrawdown,
	)

	for name, stats := range r.StrategyStats {
		slog.Info("strategy performance",
			"strategy", name,
			"trades", stats.TradeCount,
			"wagered", stats.Wagered,
			"pnl", stats.PnL,
			"roi", stats.ROI,
			"win_rate", stats.WinRate,
		)
	}
}
