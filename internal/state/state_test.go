package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStoreCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")

	store := NewStore()
	store.UpdatePosition(Position{Qty: -2, AvgCost: 5010.25})
	store.SetLastTradeTime(time.Unix(1766496600, 0).UTC())

	if err := store.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := NewStore()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	snap := loaded.Snapshot()
	if snap.Position.Qty != -2 || snap.Position.AvgCost != 5010.25 {
		t.Fatalf("unexpected position: %+v", snap.Position)
	}
	if !snap.LastTradeTime.Equal(time.Unix(1766496600, 0)) {
		t.Fatalf("unexpected last trade time: %v", snap.LastTradeTime)
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore()
	err := store.Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatalf("expected error for missing checkpoint")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing checkpoint must surface as os.ErrNotExist, got %v", err)
	}
}

func TestStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o600); err != nil {
		t.Fatalf("write checkpoint: %v", err)
	}

	store := NewStore()
	err := store.Load(path)
	if err == nil {
		t.Fatalf("expected error for corrupt checkpoint")
	}
	if errors.Is(err, os.ErrNotExist) {
		t.Fatalf("corrupt checkpoint must not look like a missing one: %v", err)
	}
}
