package engine

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Entry is one journaled per-bar decision.
type Entry struct {
	RunID        string    `json:"run_id"`
	Timestamp    time.Time `json:"timestamp"`
	BarTime      time.Time `json:"bar_time"`
	Symbol       string    `json:"symbol"`
	Close        float64   `json:"close"`
	ShortSMA     float64   `json:"short_sma"`
	LongSMA      float64   `json:"long_sma"`
	Signal       int       `json:"signal"`
	TargetQty    int       `json:"target_qty"`
	PositionQty  int       `json:"position_qty"`
	Reason       string    `json:"reason"`
	Result       string    `json:"result"`
	RejectReason string    `json:"reject_reason,omitempty"`
	OrderID      string    `json:"order_id,omitempty"`
}

// Journal appends decisions to an NDJSON file, one run id per process.
type Journal struct {
	runID  string
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
}

func NewJournal(path string, runID string) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Journal{
		runID:  runID,
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (j *Journal) RunID() string {
	return j.runID
}

func (j *Journal) Append(entry Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	payload, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal journal entry: %v\n", err)
		return
	}
	if _, err := j.writer.Write(append(payload, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write journal entry: %v\n", err)
		return
	}
	if err := j.writer.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to flush journal: %v\n", err)
	}
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.writer.Flush(); err != nil {
		_ = j.file.Close()
		return err
	}
	return j.file.Close()
}

// NewRunID returns a timestamped id unique enough to tell runs apart in an
// appended journal.
func NewRunID() string {
	timestamp := time.Now().UTC().Format("20060102T150405")
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return timestamp
	}
	return timestamp + "-" + hex.EncodeToString(randomBytes)
}
