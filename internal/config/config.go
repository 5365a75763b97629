package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	General  GeneralConfig  `toml:"general"`
	Schedule ScheduleConfig `toml:"schedule"`
	Ledger   LedgerConfig   `toml:"ledger"`
	Analyzer AnalyzerConfig `toml:"analyzer"`
	Selector SelectorConfig `toml:"selector"`
	Exit     ExitConfig     `toml:"exit"`
}

type GeneralConfig struct {
	DBPath         string  `toml:"db_path"`
	LogLevel       string  `toml:"log_level"`
	GammaURL       string  `toml:"gamma_url"`
	InitialBalance float64 `toml:"initial_balance"`
}

type ScheduleConfig struct {
	SignalInterval      Duration `toml:"signal_interval"`
	RefreshInterval     Duration `toml:"refresh_interval"`
	ScalpIntervalMin    Duration `toml:"scalp_interval_min"`
	ScalpIntervalMax    Duration `toml:"scalp_interval_max"`
	PerformanceInterval Duration `toml:"performance_interval"`
	ErrorBackoff        Duration `toml:"error_backoff"`
	MarketBatchSize     int      `toml:"market_batch_size"`
	ScalpBatchSize      int      `toml:"scalp_batch_size"`
}

type LedgerConfig struct {
	TradeHistoryCap   int      `toml:"trade_history_cap"`
	PnLHistoryCap     int      `toml:"pnl_history_cap"`
	PnLSampleInterval Duration `toml:"pnl_sample_interval"`
	MinEntryPrice     float64  `toml:"min_entry_price"`
	MaxEntryPrice     float64  `toml:"max_entry_price"`
	BaseSizePct       float64  `toml:"base_size_pct"`
	MaxSizePct        float64  `toml:"max_size_pct"`
	MinTradeSize      float64  `toml:"min_trade_size"`
}

type AnalyzerConfig struct {
	HistoryCap        int     `toml:"history_cap"`
	AnalysisCap       int     `toml:"analysis_cap"`
	MomentumWindow    int     `toml:"momentum_window"`
	TrendShortWindow  int     `toml:"trend_short_window"`
	TrendMediumWindow int     `toml:"trend_medium_window"`
	ArbFeeThreshold   float64 `toml:"arb_fee_threshold"`
	ArbMinProfitPct   float64 `toml:"arb_min_profit_pct"`
	ArbScoreBase      float64 `toml:"arb_score_base"`
	ArbScoreSpan      float64 `toml:"arb_score_span"`
	MomentumFloor     float64 `toml:"momentum_floor"`
	TrendFloor        float64 `toml:"trend_floor"`
	AdequateVolume    float64 `toml:"adequate_volume"`
	AdequateLiquidity float64 `toml:"adequate_liquidity"`
	SentimentVolNorm  float64 `toml:"sentiment_vol_norm"`
	BaseScore         float64 `toml:"base_score"`
}

type SelectorConfig struct {
	MomentumThreshold  float64 `toml:"momentum_threshold"`
	MeanRevDistance    float64 `toml:"mean_rev_distance"`
	BreakoutVolumeFrac float64 `toml:"breakout_volume_frac"`
	ContextThreshold   float64 `toml:"context_threshold"`
	GenericMinScore    float64 `toml:"generic_min_score"`
	MinVolume          float64 `toml:"min_volume"`
	MinLiquidity       float64 `toml:"min_liquidity"`
	MaxSwingPerCycle   int     `toml:"max_swing_per_cycle"`
	MaxScalpPerCycle   int     `toml:"max_scalp_per_cycle"`
}

type ExitConfig struct {
	ScalpTakeProfit   float64  `toml:"scalp_take_profit"`
	ScalpStopLoss     float64  `toml:"scalp_stop_loss"`
	ScalpMaxHold      Duration `toml:"scalp_max_hold"`
	ArbCorrectedSum   float64  `toml:"arb_corrected_sum"`
	ArbTakeProfit     float64  `toml:"arb_take_profit"`
	MeanRevRecovery   float64  `toml:"mean_rev_recovery"`
	MeanRevTakeProfit float64  `toml:"mean_rev_take_profit"`
	MeanRevStopLoss   float64  `toml:"mean_rev_stop_loss"`
	SwingTakeProfit   float64  `toml:"swing_take_profit"`
	SwingStopLoss     float64  `toml:"swing_stop_loss"`
	ContextTakeProfit float64  `toml:"context_take_profit"`
	ContextStopLoss   float64  `toml:"context_stop_loss"`
	FinalTakeProfit   float64  `toml:"final_take_profit"`
	FinalStopLoss     float64  `toml:"final_stop_loss"`
}

// Duration wraps time.Duration for TOML unmarshaling.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Load reads the TOML config at path over the defaults. A missing file
// is not an error: the binary runs on DefaultConfig alone. Anything else
// that prevents reading or parsing is fatal.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			DBPath:         "./data/polysim.db",
			LogLevel:       "info",
			GammaURL:       "https://gamma-api.polymarket.com",
			InitialBalance: 2000.0,
		},
		Schedule: ScheduleConfig{
			SignalInterval:      Duration{3 * time.Second},
			RefreshInterval:     Duration{2 * time.Second},
			ScalpIntervalMin:    Duration{2 * time.Second},
			ScalpIntervalMax:    Duration{5 * time.Second},
			PerformanceInterval: Duration{15 * time.Minute},
			ErrorBackoff:        Duration{5 * time.Second},
			MarketBatchSize:     50,
			ScalpBatchSize:      15,
		},
		Ledger: LedgerConfig{
			TradeHistoryCap:   500,
			PnLHistoryCap:     1000,
			PnLSampleInterval: Duration{30 * time.Second},
			MinEntryPrice:     0.10,
			MaxEntryPrice:     0.99,
			BaseSizePct:       0.015,
			MaxSizePct:        0.05,
			MinTradeSize:      10.0,
		},
		Analyzer: AnalyzerConfig{
			HistoryCap:        20,
			AnalysisCap:       200,
			MomentumWindow:    5,
			TrendShortWindow:  5,
			TrendMediumWindow: 10,
			ArbFeeThreshold:   0.98,
			ArbMinProfitPct:   0.5,
			ArbScoreBase:      80.0,
			ArbScoreSpan:      20.0,
			MomentumFloor:     0.5,
			TrendFloor:        0.3,
			AdequateVolume:    10000.0,
			AdequateLiquidity: 5000.0,
			SentimentVolNorm:  100000.0,
			BaseScore:         5.0,
		},
		Selector: SelectorConfig{
			MomentumThreshold:  1.5,
			MeanRevDistance:    0.25,
			BreakoutVolumeFrac: 0.15,
			ContextThreshold:   0.45,
			GenericMinScore:    30.0,
			MinVolume:          5000.0,
			MinLiquidity:       1000.0,
			MaxSwingPerCycle:   5,
			MaxScalpPerCycle:   3,
		},
		Exit: ExitConfig{
			ScalpTakeProfit:   0.02,
			ScalpStopLoss:     0.008,
			ScalpMaxHold:      Duration{2 * time.Hour},
			ArbCorrectedSum:   0.995,
			ArbTakeProfit:     0.03,
			MeanRevRecovery:   0.5,
			MeanRevTakeProfit: 0.08,
			MeanRevStopLoss:   0.04,
			SwingTakeProfit:   0.10,
			SwingStopLoss:     0.05,
			ContextTakeProfit: 0.12,
			ContextStopLoss:   0.06,
			FinalTakeProfit:   0.15,
			FinalStopLoss:     0.08,
		},
	}
}
