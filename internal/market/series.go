package market

import "errors"

// Series is a rolling window of bars ordered by time. It keeps at most
// maxLen bars, dropping the oldest on overflow. A bar carrying the same
// timestamp as the current tail replaces the tail instead of appending,
// which is how in-progress live bars arrive.
type Series struct {
	bars   []Bar
	maxLen int
}

func NewSeries(maxLen int) *Series {
	if maxLen < 1 {
		maxLen = 1
	}
	return &Series{
		bars:   make([]Bar, 0, maxLen),
		maxLen: maxLen,
	}
}

func (s *Series) Append(bar Bar) {
	if n := len(s.bars); n > 0 && s.bars[n-1].Time.Equal(bar.Time) {
		s.bars[n-1] = bar
		return
	}
	s.bars = append(s.bars, bar)
	if len(s.bars) > s.maxLen {
		s.bars = s.bars[len(s.bars)-s.maxLen:]
	}
}

func (s *Series) Len() int {
	return len(s.bars)
}

func (s *Series) Last() (Bar, bool) {
	if len(s.bars) == 0 {
		return Bar{}, false
	}
	return s.bars[len(s.bars)-1], true
}

// Closes returns the closing prices in time order.
func (s *Series) Closes() []float64 {
	closes := make([]float64, len(s.bars))
	for i, b := range s.bars {
		closes[i] = b.Close
	}
	return closes
}

// SMA computes the simple moving average of the last window closes.
func (s *Series) SMA(window int) (float64, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}
	if len(s.bars) < window {
		return 0, errors.New("not enough data for SMA")
	}
	sum := 0.0
	for _, b := range s.bars[len(s.bars)-window:] {
		sum += b.Close
	}
	return sum / float64(window), nil
}
