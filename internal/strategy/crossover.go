package strategy

// Crossover is the two-window moving-average strategy: hold +OrderSize
// contracts while the short SMA is above the long SMA, -OrderSize while it
// is below or equal. No verdict is emitted until the long window is full.
type Crossover struct {
	OrderSize int
}

func (c Crossover) Decide(snapshot Snapshot) Intent {
	if !snapshot.Warm {
		return Intent{Signal: None, Reason: "warming_up"}
	}
	if snapshot.ShortSMA > snapshot.LongSMA {
		return Intent{
			Signal:    Long,
			TargetQty: c.OrderSize,
			Reason:    "short_sma_above_long",
		}
	}
	return Intent{
		Signal:    Short,
		TargetQty: -c.OrderSize,
		Reason:    "short_sma_below_long",
	}
}
