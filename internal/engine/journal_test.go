package engine

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJournalAppendsNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.ndjson")
	journal, err := NewJournal(path, "run-1")
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}

	journal.Append(Entry{RunID: "run-1", BarTime: time.Unix(0, 0).UTC(), Symbol: "ES", Result: "hold"})
	journal.Append(Entry{RunID: "run-1", BarTime: time.Unix(300, 0).UTC(), Symbol: "ES", Result: "order_submitted", OrderID: "7"})
	if err := journal.Close(); err != nil {
		t.Fatalf("close journal: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("bad journal line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].OrderID != "7" || entries[1].Result != "order_submitted" {
		t.Fatalf("unexpected entry: %+v", entries[1])
	}
}

func TestNewRunIDIsUnique(t *testing.T) {
	if NewRunID() == NewRunID() {
		t.Fatalf("expected distinct run ids")
	}
}
