package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
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

type placedOrder struct {
	Side broker.Side
	Qty  int
}

type fakeGateway struct {
	orders   []placedOrder
	failNext bool
	position broker.Position
}

func (f *fakeGateway) Connect(ctx context.Context) error { return nil }
func (f *fakeGateway) Close() error                      { return nil }

func (f *fakeGateway) HistoricalBars(ctx context.Context, contract broker.ContractSpec, lookback, barSize string) ([]market.Bar, error) {
	return nil, nil
}

func (f *fakeGateway) StreamBars(ctx context.Context, contract broker.ContractSpec, handler broker.BarHandler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeGateway) PlaceMarketOrder(ctx context.Context, contract broker.ContractSpec, side broker.Side, qty int) (broker.OrderRef, error) {
	if f.failNext {
		f.failNext = false
		return broker.OrderRef{}, fmt.Errorf("gateway unavailable")
	}
	f.orders = append(f.orders, placedOrder{Side: side, Qty: qty})
	return broker.OrderRef{ID: fmt.Sprintf("%d", len(f.orders)), Status: "Submitted"}, nil
}

func (f *fakeGateway) Position(ctx context.Context, contract broker.ContractSpec) (broker.Position, error) {
	return f.position, nil
}

type openGate struct{}

func (openGate) Active() bool { return true }

type closedGate struct{}

func (closedGate) Active() bool { return false }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Contract.Symbol = "ES"
	cfg.Contract.SecType = "FUT"
	cfg.Contract.Exchange = "CME"
	cfg.Strategy.ShortWindow = 2
	cfg.Strategy.LongWindow = 3
	cfg.Strategy.OrderSize = 1
	cfg.Risk.MaxPosition = 1
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config, gateway *fakeGateway, gate SessionGate) (*Engine, *state.Store) {
	t.Helper()
	journal, err := NewJournal(filepath.Join(t.TempDir(), "decisions.ndjson"), "test-run")
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	t.Cleanup(func() { journal.Close() })

	store := state.NewStore()
	contract := broker.ContractSpec{Symbol: cfg.Contract.Symbol, SecType: cfg.Contract.SecType, Exchange: cfg.Contract.Exchange}
	eng := New(cfg, contract, strategy.Crossover{OrderSize: cfg.Strategy.OrderSize}, risk.Gate{}, gateway, store, journal, recorder.NewNoopRecorder(), gate, zerolog.Nop())
	return eng, store
}

func feed(eng *Engine, closes ...float64) {
	for i, c := range closes {
		eng.OnBar(context.Background(), market.Bar{
			Symbol: "ES",
			Time:   time.Unix(int64(i)*300, 0).UTC(),
			Close:  c,
		})
	}
}

func TestEngineWarmupPlacesNoOrders(t *testing.T) {
	gateway := &fakeGateway{}
	eng, _ := newTestEngine(t, testConfig(), gateway, openGate{})

	feed(eng, 100, 101)

	if len(gateway.orders) != 0 {
		t.Fatalf("expected no orders during warmup, got %v", gateway.orders)
	}
}

func TestEngineCrossoverCorrectsPosition(t *testing.T) {
	gateway := &fakeGateway{}
	eng, store := newTestEngine(t, testConfig(), gateway, openGate{})

	// Third bar completes the long window with a rising tape: go long.
	feed(eng, 1, 2, 3)
	if len(gateway.orders) != 1 {
		t.Fatalf("expected 1 order, got %v", gateway.orders)
	}
	if gateway.orders[0] != (placedOrder{Side: broker.Buy, Qty: 1}) {
		t.Fatalf("expected BUY 1, got %+v", gateway.orders[0])
	}

	// Collapse flips the crossover: target -1 from +1 means SELL 2.
	eng.OnBar(context.Background(), market.Bar{Symbol: "ES", Time: time.Unix(900, 0).UTC(), Close: 0.5})
	if len(gateway.orders) != 2 {
		t.Fatalf("expected 2 orders, got %v", gateway.orders)
	}
	if gateway.orders[1] != (placedOrder{Side: broker.Sell, Qty: 2}) {
		t.Fatalf("expected SELL 2, got %+v", gateway.orders[1])
	}

	pos := store.Snapshot().Position.Qty
	if pos != -1 {
		t.Fatalf("expected position -1, got %d", pos)
	}
	if pos > 1 || pos < -1 {
		t.Fatalf("position exceeds max position: %d", pos)
	}
}

func TestEngineOrderFailureIsNotFatal(t *testing.T) {
	gateway := &fakeGateway{failNext: true}
	eng, store := newTestEngine(t, testConfig(), gateway, openGate{})

	feed(eng, 1, 2, 3)
	if len(gateway.orders) != 0 {
		t.Fatalf("expected failed order not to be recorded, got %v", gateway.orders)
	}
	if store.Snapshot().Position.Qty != 0 {
		t.Fatalf("position must not move on a failed order")
	}

	// Next bar retries the correction.
	eng.OnBar(context.Background(), market.Bar{Symbol: "ES", Time: time.Unix(900, 0).UTC(), Close: 4})
	if len(gateway.orders) != 1 || gateway.orders[0].Side != broker.Buy {
		t.Fatalf("expected retried BUY, got %v", gateway.orders)
	}
}

func TestEngineHoldsOutsideSession(t *testing.T) {
	gateway := &fakeGateway{}
	eng, _ := newTestEngine(t, testConfig(), gateway, closedGate{})

	feed(eng, 1, 2, 3, 4, 5)

	if len(gateway.orders) != 0 {
		t.Fatalf("expected no orders outside session, got %v", gateway.orders)
	}
}

func TestReconcileOverwritesLocalPosition(t *testing.T) {
	gateway := &fakeGateway{position: broker.Position{Symbol: "ES", Qty: 1, AvgCost: 5000}}
	store := state.NewStore()
	store.UpdatePosition(state.Position{Qty: -1})

	reconcileOnce(context.Background(), gateway, store, broker.ContractSpec{Symbol: "ES"}, zerolog.Nop())

	pos := store.Snapshot().Position
	if pos.Qty != 1 || pos.AvgCost != 5000 {
		t.Fatalf("expected broker truth 1@5000, got %+v", pos)
	}
}
