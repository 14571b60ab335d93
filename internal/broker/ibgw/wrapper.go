package ibgw

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/scmhub/ibapi"

	"macross/internal/broker"
	"macross/internal/market"
)

// Codes the gateway emits as connection-status chatter, not failures.
var infoCodes = map[int64]bool{
	2104: true, // market data farm connection ok
	2106: true, // historical data farm connection ok
	2107: true, // historical data farm inactive
	2108: true, // market data farm inactive
	2158: true, // sec-def data farm connection ok
}

type histResult struct {
	bars []market.Bar
	err  error
}

type histRequest struct {
	symbol string
	bars   []market.Bar
	done   chan histResult
}

type streamSub struct {
	symbol  string
	handler broker.BarHandler
}

// wrapper receives TWS API callbacks on the client's reader goroutine and
// routes them to pending requests. It embeds the library's default wrapper
// so every callback we do not care about keeps its logging behavior.
type wrapper struct {
	ibapi.Wrapper

	logger zerolog.Logger
	ready  chan struct{}

	mu          sync.Mutex
	orderID     int64
	hasOrderID  bool
	historical  map[int64]*histRequest
	streams     map[int64]streamSub
	positions   []broker.Position
	positionSub chan []broker.Position
}

func newWrapper(logger zerolog.Logger) *wrapper {
	return &wrapper{
		logger:     logger,
		ready:      make(chan struct{}),
		historical: map[int64]*histRequest{},
		streams:    map[int64]streamSub{},
	}
}

func (w *wrapper) NextValidID(orderID ibapi.OrderID) {
	w.mu.Lock()
	first := !w.hasOrderID
	w.orderID = int64(orderID)
	w.hasOrderID = true
	w.mu.Unlock()
	if first {
		close(w.ready)
	}
}

func (w *wrapper) nextOrderID() (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.hasOrderID {
		return 0, fmt.Errorf("no valid order id from gateway yet")
	}
	id := w.orderID
	w.orderID++
	return id, nil
}

func (w *wrapper) registerHistorical(reqID int64, symbol string) <-chan histResult {
	req := &histRequest{symbol: symbol, done: make(chan histResult, 1)}
	w.mu.Lock()
	w.historical[reqID] = req
	w.mu.Unlock()
	return req.done
}

func (w *wrapper) dropHistorical(reqID int64) {
	w.mu.Lock()
	delete(w.historical, reqID)
	w.mu.Unlock()
}

func (w *wrapper) HistoricalData(reqID ibapi.TickerID, bar *ibapi.Bar) {
	w.mu.Lock()
	defer w.mu.Unlock()
	req, ok := w.historical[int64(reqID)]
	if !ok {
		return
	}
	ts, err := parseBarTime(bar.Date)
	if err != nil {
		w.logger.Warn().Str("date", bar.Date).Err(err).Msg("skipping bar with unparseable date")
		return
	}
	req.bars = append(req.bars, market.Bar{
		Symbol: req.symbol,
		Time:   ts,
		Open:   bar.Open,
		High:   bar.High,
		Low:    bar.Low,
		Close:  bar.Close,
		Volume: bar.Volume.InexactFloat64(),
	})
}

func (w *wrapper) HistoricalDataEnd(reqID ibapi.TickerID, startDateStr, endDateStr string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if req, ok := w.historical[int64(reqID)]; ok {
		req.done <- histResult{bars: req.bars}
	}
}

func (w *wrapper) registerStream(reqID int64, symbol string, handler broker.BarHandler) {
	w.mu.Lock()
	w.streams[reqID] = streamSub{symbol: symbol, handler: handler}
	w.mu.Unlock()
}

func (w *wrapper) dropStream(reqID int64) {
	w.mu.Lock()
	delete(w.streams, reqID)
	w.mu.Unlock()
}

func (w *wrapper) RealtimeBar(reqID ibapi.TickerID, t int64, open, high, low, close float64, volume ibapi.Decimal, wap ibapi.Decimal, count int64) {
	w.mu.Lock()
	sub, ok := w.streams[int64(reqID)]
	w.mu.Unlock()
	if !ok {
		return
	}
	sub.handler(market.Bar{
		Symbol: sub.symbol,
		Time:   time.Unix(t, 0).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: volume.InexactFloat64(),
	})
}

func (w *wrapper) registerPositions() <-chan []broker.Position {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.positions = nil
	w.positionSub = make(chan []broker.Position, 1)
	return w.positionSub
}

func (w *wrapper) Position(account string, contract *ibapi.Contract, position ibapi.Decimal, avgCost float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.positionSub == nil {
		return
	}
	w.positions = append(w.positions, broker.Position{
		Symbol:  contract.Symbol,
		Qty:     int(position.IntPart()),
		AvgCost: avgCost,
	})
}

func (w *wrapper) PositionEnd() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.positionSub != nil {
		w.positionSub <- w.positions
		w.positionSub = nil
	}
}

func (w *wrapper) OrderStatus(orderID ibapi.OrderID, status string, filled ibapi.Decimal, remaining ibapi.Decimal, avgFillPrice float64, permID int64, parentID ibapi.OrderID, lastFillPrice float64, clientID int64, whyHeld string, mktCapPrice float64) {
	w.logger.Info().
		Int64("order_id", int64(orderID)).
		Str("status", status).
		Str("filled", filled.String()).
		Float64("avg_fill_price", avgFillPrice).
		Msg("order status")
}

func (w *wrapper) Error(reqID ibapi.TickerID, errTime int64, errCode int64, errString string, advancedOrderRejectJSON string) {
	if infoCodes[errCode] {
		w.logger.Debug().Int64("code", errCode).Msg(errString)
		return
	}

	w.mu.Lock()
	req, pending := w.historical[int64(reqID)]
	if pending {
		delete(w.historical, int64(reqID))
	}
	w.mu.Unlock()
	if pending {
		req.done <- histResult{err: fmt.Errorf("gateway error %d: %s", errCode, errString)}
		return
	}

	w.logger.Warn().Int64("req_id", int64(reqID)).Int64("code", errCode).Msg(errString)
}
