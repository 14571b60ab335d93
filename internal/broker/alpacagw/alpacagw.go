// Package alpacagw is the Alpaca paper-trading backend. Futures contract
// months do not apply here; the contract is addressed by symbol only.
package alpacagw

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata/stream"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"macross/internal/broker"
	"macross/internal/market"
)

type Gateway struct {
	apiKey    string
	apiSecret string
	baseURL   string
	feed      string
	logger    zerolog.Logger

	trading *alpaca.Client
	data    *marketdata.Client
}

func New(apiKey, apiSecret, baseURL, feed string, logger zerolog.Logger) *Gateway {
	return &Gateway{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		feed:      feed,
		logger:    logger,
	}
}

// Connect builds the REST clients and verifies the credentials with an
// account fetch.
func (g *Gateway) Connect(ctx context.Context) error {
	g.trading = alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    g.apiKey,
		APISecret: g.apiSecret,
		BaseURL:   g.baseURL,
	})
	g.data = marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    g.apiKey,
		APISecret: g.apiSecret,
	})

	acct, err := g.trading.GetAccount()
	if err != nil {
		return fmt.Errorf("verify account: %w", err)
	}
	equity, _ := acct.Equity.Float64()
	g.logger.Info().Str("account", acct.AccountNumber).Float64("equity", equity).Msg("alpaca connected")
	return nil
}

func (g *Gateway) Close() error {
	return nil
}

func (g *Gateway) HistoricalBars(ctx context.Context, contract broker.ContractSpec, lookback, barSize string) ([]market.Bar, error) {
	span, err := market.ParseLookback(lookback)
	if err != nil {
		return nil, err
	}
	timeframe, err := parseBarSize(barSize)
	if err != nil {
		return nil, err
	}

	bars, err := g.data.GetBars(contract.Symbol, marketdata.GetBarsRequest{
		TimeFrame: timeframe,
		Start:     time.Now().Add(-span),
		Feed:      parseFeed(g.feed),
	})
	if err != nil {
		return nil, fmt.Errorf("historical bars for %s: %w", contract.Symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no historical data for %s", contract.Symbol)
	}

	out := make([]market.Bar, 0, len(bars))
	for _, b := range bars {
		out = append(out, market.Bar{
			Symbol: contract.Symbol,
			Time:   b.Timestamp,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	return out, nil
}

func (g *Gateway) StreamBars(ctx context.Context, contract broker.ContractSpec, handler broker.BarHandler) error {
	client := stream.NewStocksClient(
		parseFeed(g.feed),
		stream.WithCredentials(g.apiKey, g.apiSecret),
	)

	// Connect must be called before subscribing in this SDK version.
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect market data stream: %w", err)
	}

	if err := client.SubscribeToBars(func(bar stream.Bar) {
		handler(market.Bar{
			Symbol: bar.Symbol,
			Time:   bar.Timestamp,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: float64(bar.Volume),
		})
	}, contract.Symbol); err != nil {
		return fmt.Errorf("subscribe to bars: %w", err)
	}

	g.logger.Info().Str("symbol", contract.Symbol).Str("feed", g.feed).Msg("subscribed to bars")
	<-ctx.Done()
	return ctx.Err()
}

func (g *Gateway) PlaceMarketOrder(ctx context.Context, contract broker.ContractSpec, side broker.Side, qty int) (broker.OrderRef, error) {
	if qty <= 0 {
		return broker.OrderRef{}, fmt.Errorf("order quantity must be positive, got %d", qty)
	}
	orderSide := alpaca.Buy
	if side == broker.Sell {
		orderSide = alpaca.Sell
	}
	quantity := decimal.NewFromInt(int64(qty))

	order, err := g.trading.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      contract.Symbol,
		Qty:         &quantity,
		Side:        orderSide,
		Type:        alpaca.Market,
		TimeInForce: alpaca.Day,
	})
	if err != nil {
		return broker.OrderRef{}, fmt.Errorf("place order: %w", err)
	}

	g.logger.Info().Str("order_id", order.ID).Str("side", string(side)).Int("qty", qty).Str("symbol", contract.Symbol).Msg("market order placed")
	return broker.OrderRef{ID: order.ID, Status: string(order.Status)}, nil
}

func (g *Gateway) Position(ctx context.Context, contract broker.ContractSpec) (broker.Position, error) {
	pos, err := g.trading.GetPosition(contract.Symbol)
	if err != nil {
		var apiErr *alpaca.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return broker.Position{Symbol: contract.Symbol}, nil
		}
		return broker.Position{}, fmt.Errorf("fetch position: %w", err)
	}

	avgEntry, _ := pos.AvgEntryPrice.Float64()
	return broker.Position{
		Symbol:  pos.Symbol,
		Qty:     int(pos.Qty.IntPart()),
		AvgCost: avgEntry,
	}, nil
}

func parseFeed(feed string) marketdata.Feed {
	switch feed {
	case "sip":
		return marketdata.SIP
	default:
		return marketdata.IEX
	}
}
