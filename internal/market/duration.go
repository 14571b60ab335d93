package market

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseLookback converts a TWS-style duration string ("2 D", "1 W", "3600 S")
// into a time.Duration so every backend shares one config vocabulary.
func ParseLookback(lookback string) (time.Duration, error) {
	fields := strings.Fields(lookback)
	if len(fields) != 2 {
		return 0, fmt.Errorf("invalid lookback %q: want \"<n> <S|D|W|M|Y>\"", lookback)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid lookback %q: bad count", lookback)
	}
	switch strings.ToUpper(fields[1]) {
	case "S":
		return time.Duration(n) * time.Second, nil
	case "D":
		return time.Duration(n) * 24 * time.Hour, nil
	case "W":
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case "M":
		return time.Duration(n) * 30 * 24 * time.Hour, nil
	case "Y":
		return time.Duration(n) * 365 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid lookback %q: unknown unit", lookback)
	}
}

// ParseBarSize converts a TWS-style bar size ("5 secs", "5 mins", "1 hour",
// "1 day") into the span of a single bar.
func ParseBarSize(barSize string) (time.Duration, error) {
	fields := strings.Fields(barSize)
	if len(fields) != 2 {
		return 0, fmt.Errorf("invalid bar size %q: want \"<n> <secs|mins|hours|days>\"", barSize)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid bar size %q: bad count", barSize)
	}
	switch strings.ToLower(strings.TrimSuffix(fields[1], "s")) {
	case "sec":
		return time.Duration(n) * time.Second, nil
	case "min":
		return time.Duration(n) * time.Minute, nil
	case "hour":
		return time.Duration(n) * time.Hour, nil
	case "day":
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid bar size %q: unknown unit", barSize)
	}
}
