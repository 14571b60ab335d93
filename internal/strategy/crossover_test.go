package strategy

import "testing"

func TestCrossoverWarmupEmitsNoSignal(t *testing.T) {
	strat := Crossover{OrderSize: 2}
	intent := strat.Decide(Snapshot{Close: 100, Warm: false})
	if intent.Signal != None {
		t.Fatalf("expected NONE during warmup, got %s", intent.Signal)
	}
	if intent.TargetQty != 0 {
		t.Fatalf("expected zero target during warmup, got %d", intent.TargetQty)
	}
}

func TestCrossoverLongSignal(t *testing.T) {
	strat := Crossover{OrderSize: 2}
	intent := strat.Decide(Snapshot{Warm: true, ShortSMA: 101, LongSMA: 100})
	if intent.Signal != Long || intent.TargetQty != 2 {
		t.Fatalf("expected LONG target=2, got %s target=%d", intent.Signal, intent.TargetQty)
	}
}

func TestCrossoverShortSignal(t *testing.T) {
	strat := Crossover{OrderSize: 3}
	intent := strat.Decide(Snapshot{Warm: true, ShortSMA: 99, LongSMA: 100})
	if intent.Signal != Short || intent.TargetQty != -3 {
		t.Fatalf("expected SHORT target=-3, got %s target=%d", intent.Signal, intent.TargetQty)
	}
}

func TestCrossoverEqualAveragesMapToShort(t *testing.T) {
	strat := Crossover{OrderSize: 1}
	intent := strat.Decide(Snapshot{Warm: true, ShortSMA: 100, LongSMA: 100})
	if intent.Signal != Short {
		t.Fatalf("expected SHORT on equal averages, got %s", intent.Signal)
	}
}
