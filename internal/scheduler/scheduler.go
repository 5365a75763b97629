package scheduler

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"polysim/internal/config"
	"polysim/internal/exit"
	"polysim/internal/journal"
	"polysim/internal/ledger"
	"polysim/internal/market"
	"polysim/internal/performance"
	"polysim/internal/strategy"
)

// MarketDataSource is the upstream market-data collaborator. Rate
// limiting, retries and pagination are its concern, not the engine's.
type MarketDataSource interface {
	FetchMarkets(ctx context.Context, limit int) ([]market.Record, error)
	SearchMarkets(ctx context.Context, query string, limit int) ([]market.Record, error)
}

// Scheduler drives the engine with three independently-paced loops
// sharing one ledger:
//
//   - the signal loop fetches the full market batch, recomputes analyses
//     and opens swing positions;
//   - the refresh loop re-marks open positions from the latest snapshot
//     and runs exit evaluation, keeping marks fresh while the signal loop
//     is busy;
//   - the scalp loop works a small high-volume subset end to end on a
//     randomized cadence so it never beats against the upstream in step
//     with the others.
//
// A failure inside any single cycle is logged and followed by a backoff
// sleep; it never terminates the loop or its siblings.
type Scheduler struct {
	source   MarketDataSource
	history  *market.History
	analyzer *market.Analyzer
	store    *market.AnalysisStore
	selector *strategy.Selector
	ledger   *ledger.Ledger
	policy   *exit.Policy
	recorder *journal.Recorder    // optional
	tracker  *performance.Tracker // optional
	cfg      config.ScheduleConfig

	maxSwing      int
	maxScalp      int
	snapshotEvery time.Duration

	// latest raw records by market id, shared between loops so the
	// refresh loop can re-mark positions without its own fetch.
	recMu  sync.RWMutex
	latest map[string]market.Record

	runMu   sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool

	lastBankroll time.Time
}

func New(
	source MarketDataSource,
	history *market.History,
	analyzer *market.Analyzer,
	store *market.AnalysisStore,
	selector *strategy.Selector,
	ldgr *ledger.Ledger,
	policy *exit.Policy,
	recorder *journal.Recorder,
	tracker *performance.Tracker,
	cfg *config.Config,
) *Scheduler {
	return &Scheduler{
		source:   source,
		history:  history,
		analyzer: analyzer,
		store:    store,
		selector: selector,
		ledger:   ldgr,
		policy:   policy,
		recorder: recorder,
		tracker:  tracker,
		cfg:      cfg.Schedule,

		maxSwing:      cfg.Selector.MaxSwingPerCycle,
		maxScalp:      cfg.Selector.MaxScalpPerCycle,
		snapshotEvery: cfg.Ledger.PnLSampleInterval.Duration,

		latest: make(map[string]market.Record),
	}
}

// Start launches the three loops in the background. Calling Start on a
// running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.running {
		return
	}
	s.running = true

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	slog.Info("scheduler starting",
		"signal_interval", s.cfg.SignalInterval.Duration,
		"refresh_interval", s.cfg.RefreshInterval.Duration,
		"scalp_interval_min", s.cfg.ScalpIntervalMin.Duration,
		"scalp_interval_max", s.cfg.ScalpIntervalMax.Duration,
	)

	s.wg.Add(3)
	go s.loop(loopCtx, "signal", s.signalInterval, s.runSignalCycle)
	go s.loop(loopCtx, "refresh", s.refreshInterval, s.runRefreshCycle)
	go s.loop(loopCtx, "scalp", s.scalpInterval, s.runScalpCycle)

	if s.tracker != nil {
		s.wg.Add(1)
		go s.reportLoop(loopCtx)
	}
}

// Stop cancels the loops and waits for in-flight cycles to finish their
// final ledger mutation. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.runMu.Lock()
	if !s.running {
		s.runMu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.runMu.Unlock()

	cancel()
	s.wg.Wait()
	slog.Info("scheduler stopped")
}

// Run starts the loops and blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start(ctx)
	<-ctx.Done()
	s.Stop()
	return ctx.Err()
}

func (s *Scheduler) signalInterval() time.Duration  { return s.cfg.SignalInterval.Duration }
func (s *Scheduler) refreshInterval() time.Duration { return s.cfg.RefreshInterval.Duration }

// scalpInterval draws a fresh randomized pause each cycle so the scalp
// loop never synchronizes with the other loops against the upstream.
func (s *Scheduler) scalpInterval() time.Duration {
	min := s.cfg.ScalpIntervalMin.Duration
	max := s.cfg.ScalpIntervalMax.Duration
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int64N(int64(max-min)))
}

// loop runs one cycle immediately and then on its interval until the
// context is cancelled. A cycle error swaps the next pause for the
// configured backoff.
func (s *Scheduler) loop(ctx context.Context, name string, interval func() time.Duration, cycle func(context.Context) error) {
	defer s.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("loop shutting down", "loop", name)
			return
		case <-timer.C:
		}

		next := interval()
		if err := cycle(ctx); err != nil && ctx.Err() == nil {
			slog.Error("cycle failed", "loop", name, "error", err)
			next = s.cfg.ErrorBackoff.Duration
		}

		timer.Reset(next)
	}
}

func (s *Scheduler) reportLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PerformanceInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPerformanceReport()
		}
	}
}

// runSignalCycle is one pass of the slow loop: fetch, analyze, select,
// open swing positions. All fetching and analysis happens before any
// ledger mutation; only Open itself takes the ledger lock.
func (s *Scheduler) runSignalCycle(ctx context.Context) error {
	records, err := s.source.FetchMarkets(ctx, s.cfg.MarketBatchSize)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		slog.Info("signal cycle: no markets returned")
		return nil
	}

	s.replaceLatest(records)

	now := time.Now()
	analyses := make([]market.Analysis, 0, len(records))
	for _, rec := range records {
		a := s.analyzer.Analyze(rec, now)
		s.store.Put(a)
		analyses = append(analyses, a)
	}

	s.trimHistory()

	candidates := s.selector.Select(analyses, s.ledger.Holds, 0)
	opened := 0
	for _, cand := range candidates {
		if cand.TradeType != strategy.TradeSwing {
			continue
		}
		if opened >= s.maxSwing {
			break
		}
		if s.open(cand, now) {
			opened++
		}
	}

	slog.Info("signal cycle complete",
		"markets", len(records),
		"candidates", len(candidates),
		"opened", opened,
	)
	return nil
}

// runRefreshCycle re-marks open positions from the latest record
// snapshot and closes any position whose exit rule fires. Extraction
// failures leave the prior mark in place rather than inventing a price.
func (s *Scheduler) runRefreshCycle(ctx context.Context) error {
	now := time.Now()
	positions := s.ledger.Positions()

	pairs := s.pricePairs(positions)
	s.ledger.UpdatePrices(pairs, now)

	closed := s.evaluateExits(s.ledger.Positions(), pairs, now, "")

	s.snapshotBankroll(now)

	if closed > 0 {
		slog.Info("refresh cycle complete", "positions", len(positions), "closed", closed)
	}
	return nil
}

// runScalpCycle works the high-volume subset end to end: fetch, analyze,
// open scalps, and close scalps whose tight bands have resolved.
func (s *Scheduler) runScalpCycle(ctx context.Context) error {
	records, err := s.source.FetchMarkets(ctx, s.cfg.ScalpBatchSize)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	s.mergeLatest(records)

	now := time.Now()
	analyses := make([]market.Analysis, 0, len(records))
	for _, rec := range records {
		a := s.analyzer.Analyze(rec, now)
		s.store.Put(a)
		analyses = append(analyses, a)
	}

	candidates := s.selector.Select(analyses, s.ledger.Holds, 0)
	opened := 0
	for _, cand := range candidates {
		if cand.TradeType != strategy.TradeScalp {
			continue
		}
		if opened >= s.maxScalp {
			break
		}
		if s.open(cand, now) {
			opened++
		}
	}

	scalps := make([]ledger.Position, 0)
	for _, pos := range s.ledger.Positions() {
		if pos.TradeType == strategy.TradeScalp {
			scalps = append(scalps, pos)
		}
	}
	closed := s.evaluateExits(scalps, s.pricePairs(scalps), now, strategy.TradeScalp)

	if opened > 0 || closed > 0 {
		slog.Info("scalp cycle complete", "opened", opened, "closed", closed)
	}
	return nil
}

// open sizes and opens one candidate, journaling the BUY on success.
func (s *Scheduler) open(cand strategy.Candidate, now time.Time) bool {
	size := s.ledger.PositionSize(cand.Confidence)
	if size <= 0 {
		return false
	}
	trade, ok := s.ledger.Open(cand, size, now)
	if !ok {
		return false
	}
	s.record(trade)
	return true
}

// evaluateExits runs the exit policy over the given positions, closing
// the ones whose rules fire. When onlyType is non-empty, other trade
// types are left for the refresh loop.
func (s *Scheduler) evaluateExits(positions []ledger.Position, pairs map[string]market.PricePair, now time.Time, onlyType strategy.TradeType) int {
	closed := 0
	for _, pos := range positions {
		if onlyType != "" && pos.TradeType != onlyType {
			continue
		}

		mark := exit.Mark{Price: pos.CurrentPrice}
		if pair, ok := pairs[pos.MarketID]; ok {
			p := pair
			mark.Price = pair.ForOutcome(pos.Outcome)
			mark.Pair = &p
		}

		decision, ok := s.policy.Evaluate(pos, mark, now)
		if !ok {
			continue
		}

		trade, ok := s.ledger.Close(pos.Key(), decision.ExitPrice, decision.Reason, now)
		if !ok {
			continue // already closed by a sibling loop
		}
		s.record(trade)
		closed++
	}
	return closed
}

// pricePairs extracts the freshest prices for the given positions from
// the shared record snapshot. Markets without extractable prices are
// absent from the result.
func (s *Scheduler) pricePairs(positions []ledger.Position) map[string]market.PricePair {
	s.recMu.RLock()
	defer s.recMu.RUnlock()

	pairs := make(map[string]market.PricePair, len(positions))
	for _, pos := range positions {
		if _, done := pairs[pos.MarketID]; done {
			continue
		}
		rec, ok := s.latest[pos.MarketID]
		if !ok {
			continue
		}
		if pair, ok := market.ExtractPrices(rec); ok {
			pairs[pos.MarketID] = pair
		}
	}
	return pairs
}

func (s *Scheduler) replaceLatest(records []market.Record) {
	s.recMu.Lock()
	defer s.recMu.Unlock()

	// Keep records for markets we still hold positions in, even if the
	// latest batch dropped them; their marks would otherwise freeze.
	fresh := make(map[string]market.Record, len(records))
	for _, rec := range records {
		if id := rec.ID(); id != "" {
			fresh[id] = rec
		}
	}
	for _, pos := range s.ledger.Positions() {
		if _, ok := fresh[pos.MarketID]; !ok {
			if old, ok := s.latest[pos.MarketID]; ok {
				fresh[pos.MarketID] = old
			}
		}
	}
	s.latest = fresh
}

func (s *Scheduler) mergeLatest(records []market.Record) {
	s.recMu.Lock()
	defer s.recMu.Unlock()

	for _, rec := range records {
		if id := rec.ID(); id != "" {
			s.latest[id] = rec
		}
	}
}

// trimHistory drops price buffers for markets no longer in the snapshot
// and without open positions.
func (s *Scheduler) trimHistory() {
	keep := make(map[string]bool)

	s.recMu.RLock()
	for id := range s.latest {
		keep[id] = true
	}
	s.recMu.RUnlock()

	for _, pos := range s.ledger.Positions() {
		keep[pos.MarketID] = true
	}

	s.history.Retain(keep)
}

func (s *Scheduler) record(trade ledger.Trade) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordTrade(trade); err != nil {
		slog.Error("failed to journal trade", "trade", trade.ID, "error", err)
	}
}

// snapshotBankroll persists a portfolio summary at the P&L sample
// cadence.
func (s *Scheduler) snapshotBankroll(now time.Time) {
	if s.recorder == nil {
		return
	}
	if !s.lastBankroll.IsZero() && now.Sub(s.lastBankroll) < s.snapshotEvery {
		return
	}
	s.lastBankroll = now

	if err := s.recorder.SnapshotBankroll(s.ledger.Stats()); err != nil {
		slog.Error("bankroll snapshot failed", "error", err)
	}
}

func (s *Scheduler) runPerformanceReport() {
	report, err := s.tracker.Generate()
	if err != nil {
		slog.Error("performance report failed", "error", err)
		return
	}
	report.CurrentBalance = s.ledger.Stats().Balance
	performance.LogReport(report)
}
