package market

import "time"

// Bar is a single OHLCV bar as delivered by the gateway, historical or live.
type Bar struct {
	Symbol string
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
