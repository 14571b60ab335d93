package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"macross/internal/market"
)

func TestSQLiteRecorderRoundTrip(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	defer rec.Close()

	now := time.Unix(1766496600, 0).UTC()
	if err := rec.RecordBar(market.Bar{Symbol: "ES", Time: now, Close: 5010.5, Volume: 12}); err != nil {
		t.Fatalf("record bar: %v", err)
	}
	if err := rec.RecordDecision(Decision{Time: now, Symbol: "ES", Close: 5010.5, Signal: 1, TargetQty: 1, Result: "order_submitted"}); err != nil {
		t.Fatalf("record decision: %v", err)
	}
	if err := rec.RecordExecution(Execution{Time: now, Symbol: "ES", Side: "BUY", Qty: 1, TargetQty: 1, OrderID: "7"}); err != nil {
		t.Fatalf("record execution: %v", err)
	}

	for _, table := range []string{"bars", "decisions", "executions"} {
		var count int
		if err := rec.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected 1 row in %s, got %d", table, count)
		}
	}
}
