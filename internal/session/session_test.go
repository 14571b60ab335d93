package session

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestInWindowDaytime(t *testing.T) {
	open := 9*60 + 30
	closeMin := 16 * 60
	cases := []struct {
		now  int
		want bool
	}{
		{9*60 + 29, false},
		{9*60 + 30, true},
		{12 * 60, true},
		{16 * 60, false},
		{23 * 60, false},
	}
	for _, tc := range cases {
		if got := inWindow(tc.now, open, closeMin); got != tc.want {
			t.Fatalf("now=%d: expected %v, got %v", tc.now, tc.want, got)
		}
	}
}

func TestInWindowOvernight(t *testing.T) {
	open := 18 * 60
	closeMin := 17 * 60
	cases := []struct {
		now  int
		want bool
	}{
		{18 * 60, true},
		{23 * 60, true},
		{2 * 60, true},
		{17*60 + 30, false},
	}
	for _, tc := range cases {
		if got := inWindow(tc.now, open, closeMin); got != tc.want {
			t.Fatalf("now=%d: expected %v, got %v", tc.now, tc.want, got)
		}
	}
}

func TestNewAlwaysActiveWithoutWindow(t *testing.T) {
	c, err := New("", "", zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Active() {
		t.Fatalf("expected always-active controller")
	}
}

func TestNewRejectsHalfWindow(t *testing.T) {
	if _, err := New("09:30", "", zerolog.Nop()); err == nil {
		t.Fatalf("expected error for half-configured window")
	}
}

func TestNewRejectsEqualOpenClose(t *testing.T) {
	if _, err := New("09:30", "09:30", zerolog.Nop()); err == nil {
		t.Fatalf("expected error for zero-width window")
	}
}

func TestNewRejectsBadClock(t *testing.T) {
	if _, err := New("25:99", "16:00", zerolog.Nop()); err == nil {
		t.Fatalf("expected error for invalid clock time")
	}
}
