package recorder

import (
	"time"

	"macross/internal/market"
)

// Decision is one per-bar strategy evaluation.
type Decision struct {
	Time        time.Time
	Symbol      string
	Close       float64
	ShortSMA    float64
	LongSMA     float64
	Signal      int
	TargetQty   int
	PositionQty int
	Result      string
}

// Execution is one submitted order.
type Execution struct {
	Time      time.Time
	Symbol    string
	Side      string
	Qty       int
	TargetQty int
	OrderID   string
}

// Recorder persists bars, decisions, and executions for later analysis.
type Recorder interface {
	RecordBar(bar market.Bar) error
	RecordDecision(d Decision) error
	RecordExecution(e Execution) error
	Close() error
}
