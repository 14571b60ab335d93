package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"macross/internal/broker"
	"macross/internal/config"
	"macross/internal/market"
	"macross/internal/recorder"
	"macross/internal/risk"
	"macross/internal/state"
	"macross/internal/strategy"
)

// SessionGate reports whether trading is currently allowed. Bars are
// processed either way so indicators stay warm.
type SessionGate interface {
	Active() bool
}

type Engine struct {
	cfg      *config.Config
	contract broker.ContractSpec
	strategy strategy.Strategy
	gate     risk.Gate
	gateway  broker.Gateway
	state    *state.Store
	journal  *Journal
	recorder recorder.Recorder
	session  SessionGate
	series   *market.Series
	logger   zerolog.Logger
}

func New(cfg *config.Config, contract broker.ContractSpec, strat strategy.Strategy, gate risk.Gate, gateway broker.Gateway, store *state.Store, journal *Journal, rec recorder.Recorder, session SessionGate, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		contract: contract,
		strategy: strat,
		gate:     gate,
		gateway:  gateway,
		state:    store,
		journal:  journal,
		recorder: rec,
		session:  session,
		series:   market.NewSeries(cfg.SeriesLen()),
		logger:   logger,
	}
}

// Seed loads historical bars into the rolling series before streaming
// starts, so the first live bar can already carry a signal.
func (e *Engine) Seed(bars []market.Bar) {
	for _, bar := range bars {
		e.series.Append(bar)
	}
	e.logger.Info().Int("bars", e.series.Len()).Msg("seeded historical bars")
}

// OnBar is the per-bar pipeline: indicator update, strategy verdict, risk
// gate, position-correcting market order. Failures are logged and journaled,
// never fatal.
func (e *Engine) OnBar(ctx context.Context, bar market.Bar) {
	e.series.Append(bar)
	e.state.SetLastBarTime(bar.Time)
	if err := e.recorder.RecordBar(bar); err != nil {
		e.logger.Warn().Err(err).Msg("record bar failed")
	}

	shortSMA, errShort := e.series.SMA(e.cfg.Strategy.ShortWindow)
	longSMA, errLong := e.series.SMA(e.cfg.Strategy.LongWindow)
	warm := errShort == nil && errLong == nil

	snap := e.state.Snapshot()
	intent := e.strategy.Decide(strategy.Snapshot{
		Time:        bar.Time,
		Close:       bar.Close,
		ShortSMA:    shortSMA,
		LongSMA:     longSMA,
		Warm:        warm,
		PositionQty: snap.Position.Qty,
	})

	e.logger.Info().
		Time("bar", bar.Time).
		Float64("last_price", bar.Close).
		Str("signal", intent.Signal.String()).
		Int("position", snap.Position.Qty).
		Msg("bar update")

	entry := Entry{
		RunID:       e.journal.RunID(),
		Timestamp:   time.Now().UTC(),
		BarTime:     bar.Time,
		Symbol:      bar.Symbol,
		Close:       bar.Close,
		ShortSMA:    shortSMA,
		LongSMA:     longSMA,
		Signal:      int(intent.Signal),
		TargetQty:   intent.TargetQty,
		PositionQty: snap.Position.Qty,
		Reason:      intent.Reason,
	}

	if !e.session.Active() {
		e.finish(entry, "session_closed")
		return
	}

	order, err := e.gate.Evaluate(intent, risk.Context{
		Now:           time.Now().UTC(),
		PositionQty:   snap.Position.Qty,
		MaxPosition:   e.cfg.Risk.MaxPosition,
		Cooldown:      e.cfg.Risk.Cooldown,
		LastTradeTime: snap.LastTradeTime,
		KillSwitch:    e.cfg.Risk.KillSwitch,
	})
	if err != nil {
		entry.RejectReason = err.Error()
		e.finish(entry, "rejected")
		return
	}
	if order.Qty == 0 {
		e.finish(entry, "hold")
		return
	}

	ref, err := e.gateway.PlaceMarketOrder(ctx, e.contract, order.Side, order.Qty)
	if err != nil {
		entry.RejectReason = err.Error()
		e.logger.Error().Err(err).Str("side", string(order.Side)).Int("qty", order.Qty).Msg("order failed")
		e.finish(entry, "order_failed")
		return
	}

	now := time.Now().UTC()
	e.state.SetLastTradeTime(now)
	// Optimistic position; the reconcile loop overwrites it with broker
	// truth, which also converges partial fills.
	e.state.UpdatePosition(state.Position{Qty: order.TargetQty, AvgCost: snap.Position.AvgCost})

	if err := e.recorder.RecordExecution(recorder.Execution{
		Time:      now,
		Symbol:    bar.Symbol,
		Side:      string(order.Side),
		Qty:       order.Qty,
		TargetQty: order.TargetQty,
		OrderID:   ref.ID,
	}); err != nil {
		e.logger.Warn().Err(err).Msg("record execution failed")
	}

	entry.OrderID = ref.ID
	e.finish(entry, "order_submitted")
}

func (e *Engine) finish(entry Entry, result string) {
	entry.Result = result
	e.journal.Append(entry)
	if err := e.recorder.RecordDecision(recorder.Decision{
		Time:        entry.BarTime,
		Symbol:      entry.Symbol,
		Close:       entry.Close,
		ShortSMA:    entry.ShortSMA,
		LongSMA:     entry.LongSMA,
		Signal:      entry.Signal,
		TargetQty:   entry.TargetQty,
		PositionQty: entry.PositionQty,
		Result:      result,
	}); err != nil {
		e.logger.Warn().Err(err).Msg("record decision failed")
	}
}
