// Package ibgw is the Interactive Brokers backend: a thin adapter between
// the broker.Gateway interface and the TWS API client, talking to a locally
// running TWS (7497 paper / 7496 live) or IB Gateway (4002 paper / 4001
// live) over TCP.
package ibgw

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/scmhub/ibapi"

	"macross/internal/broker"
	"macross/internal/market"
)

const connectTimeout = 10 * time.Second

type Gateway struct {
	host     string
	port     int
	clientID int64
	logger   zerolog.Logger

	client  *ibapi.EClient
	wrapper *wrapper
	reqSeq  atomic.Int64
}

func New(host string, port int, clientID int64, logger zerolog.Logger) *Gateway {
	w := newWrapper(logger)
	g := &Gateway{
		host:     host,
		port:     port,
		clientID: clientID,
		logger:   logger,
		wrapper:  w,
		client:   ibapi.NewEClient(w),
	}
	g.reqSeq.Store(1000)
	return g
}

// Connect dials the gateway and waits for the initial valid order id, which
// TWS sends once the session handshake completes.
func (g *Gateway) Connect(ctx context.Context) error {
	g.logger.Info().Str("host", g.host).Int("port", g.port).Int64("client_id", g.clientID).Msg("connecting to gateway")
	if err := g.client.Econnect(g.host, g.port, g.clientID); err != nil {
		return fmt.Errorf("connect to gateway %s:%d: %w", g.host, g.port, err)
	}

	timer := time.NewTimer(connectTimeout)
	defer timer.Stop()
	select {
	case <-g.wrapper.ready:
	case <-timer.C:
		g.client.Disconnect()
		return fmt.Errorf("gateway %s:%d: no handshake within %s", g.host, g.port, connectTimeout)
	case <-ctx.Done():
		g.client.Disconnect()
		return ctx.Err()
	}

	g.logger.Info().Msg("gateway connected")
	return nil
}

func (g *Gateway) Close() error {
	if !g.client.IsConnected() {
		return nil
	}
	g.logger.Info().Msg("disconnecting from gateway")
	return g.client.Disconnect()
}

// HistoricalBars requests lookback worth of bars ending now and blocks until
// the gateway signals the end of the series. An expired contract month
// yields an empty series, reported as an error.
func (g *Gateway) HistoricalBars(ctx context.Context, contract broker.ContractSpec, lookback, barSize string) ([]market.Bar, error) {
	reqID := g.nextReqID()
	result := g.wrapper.registerHistorical(reqID, contract.Symbol)
	defer g.wrapper.dropHistorical(reqID)

	g.client.ReqHistoricalData(reqID, toContract(contract), "", lookback, barSize, "TRADES", true, 2, false, nil)

	select {
	case res := <-result:
		if res.err != nil {
			return nil, fmt.Errorf("historical data for %s: %w", contract.Symbol, res.err)
		}
		if len(res.bars) == 0 {
			return nil, fmt.Errorf("no historical data for %s: check contract month and market status", contract.Symbol)
		}
		return res.bars, nil
	case <-ctx.Done():
		g.client.CancelHistoricalData(reqID)
		return nil, ctx.Err()
	}
}

// StreamBars subscribes to 5-second realtime bars and invokes handler for
// each one until the context is cancelled.
func (g *Gateway) StreamBars(ctx context.Context, contract broker.ContractSpec, handler broker.BarHandler) error {
	reqID := g.nextReqID()
	g.wrapper.registerStream(reqID, contract.Symbol, handler)
	defer g.wrapper.dropStream(reqID)

	g.client.ReqRealTimeBars(reqID, toContract(contract), 5, "TRADES", true, nil)
	g.logger.Info().Str("symbol", contract.Symbol).Msg("subscribed to realtime bars")

	<-ctx.Done()
	g.client.CancelRealTimeBars(reqID)
	return ctx.Err()
}

func (g *Gateway) PlaceMarketOrder(ctx context.Context, contract broker.ContractSpec, side broker.Side, qty int) (broker.OrderRef, error) {
	if qty <= 0 {
		return broker.OrderRef{}, fmt.Errorf("order quantity must be positive, got %d", qty)
	}
	orderID, err := g.wrapper.nextOrderID()
	if err != nil {
		return broker.OrderRef{}, err
	}

	order := ibapi.NewOrder()
	order.Action = string(side)
	order.OrderType = "MKT"
	order.TotalQuantity = ibapi.StringToDecimal(strconv.Itoa(qty))

	g.client.PlaceOrder(orderID, toContract(contract), order)
	g.logger.Info().Int64("order_id", orderID).Str("side", string(side)).Int("qty", qty).Str("symbol", contract.Symbol).Msg("market order placed")

	return broker.OrderRef{ID: strconv.FormatInt(orderID, 10), Status: "Submitted"}, nil
}

// Position pulls the account's positions and returns the one matching the
// contract symbol; a missing entry means flat.
func (g *Gateway) Position(ctx context.Context, contract broker.ContractSpec) (broker.Position, error) {
	result := g.wrapper.registerPositions()
	g.client.ReqPositions()

	var positions []broker.Position
	select {
	case positions = <-result:
	case <-ctx.Done():
		g.client.CancelPositions()
		return broker.Position{}, ctx.Err()
	}
	g.client.CancelPositions()

	for _, pos := range positions {
		if pos.Symbol == contract.Symbol {
			return pos, nil
		}
	}
	return broker.Position{Symbol: contract.Symbol}, nil
}

func (g *Gateway) nextReqID() int64 {
	return g.reqSeq.Add(1)
}

func toContract(spec broker.ContractSpec) *ibapi.Contract {
	contract := ibapi.NewContract()
	contract.Symbol = spec.Symbol
	contract.SecType = spec.SecType
	contract.Exchange = spec.Exchange
	contract.Currency = spec.Currency
	contract.LastTradeDateOrContractMonth = spec.ContractMonth
	return contract
}
