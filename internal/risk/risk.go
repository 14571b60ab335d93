package risk

import (
	"fmt"
	"time"

	"macross/internal/broker"
	"macross/internal/strategy"
)

type Context struct {
	Now           time.Time
	PositionQty   int
	MaxPosition   int
	Cooldown      time.Duration
	LastTradeTime time.Time
	KillSwitch    bool
}

// Order is an approved position correction. Qty is zero when no order is
// required.
type Order struct {
	Side      broker.Side
	Qty       int
	TargetQty int
}

type Gate struct{}

// Evaluate clamps the strategy's target position to the maximum allowed and
// sizes the order as the difference between target and held position. The
// resulting position can never exceed MaxPosition in absolute value.
func (g Gate) Evaluate(intent strategy.Intent, ctx Context) (Order, error) {
	if intent.Signal == strategy.None {
		return Order{TargetQty: ctx.PositionQty}, nil
	}

	target := clamp(intent.TargetQty, -ctx.MaxPosition, ctx.MaxPosition)
	delta := target - ctx.PositionQty
	if delta == 0 {
		return Order{TargetQty: target}, nil
	}

	if ctx.KillSwitch {
		return Order{}, fmt.Errorf("kill_switch_enabled")
	}
	if !ctx.LastTradeTime.IsZero() && ctx.Now.Sub(ctx.LastTradeTime) < ctx.Cooldown {
		return Order{}, fmt.Errorf("cooldown_active")
	}

	side := broker.Buy
	if delta < 0 {
		side = broker.Sell
		delta = -delta
	}
	return Order{Side: side, Qty: delta, TargetQty: target}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
