package broker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"macross/internal/market"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// ContractSpec identifies the instrument being traded. ContractMonth is the
// futures expiry (YYYYMM) and is ignored by backends that do not trade
// futures.
type ContractSpec struct {
	Symbol        string
	SecType       string
	Exchange      string
	Currency      string
	ContractMonth string
}

type OrderRef struct {
	ID     string
	Status string
}

type Position struct {
	Symbol  string
	Qty     int
	AvgCost float64
}

type BarHandler func(market.Bar)

// Gateway is the broker connection. StreamBars blocks until the context is
// cancelled or the stream fails.
type Gateway interface {
	Connect(ctx context.Context) error
	Close() error
	HistoricalBars(ctx context.Context, contract ContractSpec, lookback, barSize string) ([]market.Bar, error)
	StreamBars(ctx context.Context, contract ContractSpec, handler BarHandler) error
	PlaceMarketOrder(ctx context.Context, contract ContractSpec, side Side, qty int) (OrderRef, error)
	Position(ctx context.Context, contract ContractSpec) (Position, error)
}

// ConnectWithRetry attempts Connect up to attempts times with a flat delay
// between attempts. The last error is returned when all attempts fail.
func ConnectWithRetry(ctx context.Context, gw Gateway, attempts int, delay time.Duration, logger zerolog.Logger) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if err = gw.Connect(ctx); err == nil {
			return nil
		}
		logger.Warn().Err(err).Int("attempt", i).Int("max_attempts", attempts).Msg("gateway connect failed")
		if i < attempts {
			if werr := waitForContext(ctx, delay); werr != nil {
				return werr
			}
		}
	}
	return err
}

func waitForContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
