package ibgw

import (
	"fmt"
	"strconv"
	"time"
)

// parseBarTime handles the two date formats historical bars arrive in with
// formatDate=2: epoch seconds for intraday bars, YYYYMMDD for daily bars.
func parseBarTime(date string) (time.Time, error) {
	if len(date) == 8 {
		if t, err := time.Parse("20060102", date); err == nil {
			return t.UTC(), nil
		}
	}
	epoch, err := strconv.ParseInt(date, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized bar date %q", date)
	}
	return time.Unix(epoch, 0).UTC(), nil
}
