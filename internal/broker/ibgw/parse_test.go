package ibgw

import (
	"testing"
	"time"
)

func TestParseBarTimeEpoch(t *testing.T) {
	ts, err := parseBarTime("1766496600")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != time.Unix(1766496600, 0).UTC() {
		t.Fatalf("unexpected time: %v", ts)
	}
}

func TestParseBarTimeDaily(t *testing.T) {
	ts, err := parseBarTime("20260305")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.Year() != 2026 || ts.Month() != time.March || ts.Day() != 5 {
		t.Fatalf("unexpected time: %v", ts)
	}
}

func TestParseBarTimeGarbage(t *testing.T) {
	if _, err := parseBarTime("not-a-date"); err == nil {
		t.Fatalf("expected error")
	}
}
