package alpacagw

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// parseBarSize maps a TWS-style bar size ("5 mins", "1 hour", "1 day") onto
// an Alpaca timeframe. Second resolutions are not available on this backend.
func parseBarSize(barSize string) (marketdata.TimeFrame, error) {
	fields := strings.Fields(barSize)
	if len(fields) != 2 {
		return marketdata.TimeFrame{}, fmt.Errorf("invalid bar size %q", barSize)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return marketdata.TimeFrame{}, fmt.Errorf("invalid bar size %q: bad count", barSize)
	}
	switch strings.ToLower(strings.TrimSuffix(fields[1], "s")) {
	case "min":
		return marketdata.NewTimeFrame(n, marketdata.Min), nil
	case "hour":
		return marketdata.NewTimeFrame(n, marketdata.Hour), nil
	case "day":
		return marketdata.NewTimeFrame(n, marketdata.Day), nil
	case "sec":
		return marketdata.TimeFrame{}, fmt.Errorf("bar size %q not supported by alpaca backend", barSize)
	default:
		return marketdata.TimeFrame{}, fmt.Errorf("invalid bar size %q: unknown unit", barSize)
	}
}
