package strategy

import "time"

// Signal is the crossover state: long when the short SMA is above the long
// SMA, short otherwise, none while the long window is still warming up.
type Signal int

const (
	None  Signal = 0
	Long  Signal = 1
	Short Signal = -1
)

func (s Signal) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "NONE"
	}
}

// Snapshot is everything a strategy sees for one bar.
type Snapshot struct {
	Time        time.Time
	Close       float64
	ShortSMA    float64
	LongSMA     float64
	Warm        bool // true once long-window bars are available
	PositionQty int
}

// Intent is a strategy's verdict for one bar. TargetQty is the position the
// strategy wants to hold; it is only meaningful when Signal is not None.
type Intent struct {
	Signal    Signal
	TargetQty int
	Reason    string
}

type Strategy interface {
	Decide(snapshot Snapshot) Intent
}
