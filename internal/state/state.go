package state

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

type Position struct {
	Qty     int
	AvgCost float64
}

type Snapshot struct {
	Position      Position
	LastTradeTime time.Time
	LastBarTime   time.Time
}

// Store is the bot's view of its own position, guarded for access from the
// bar callback and the reconcile loop. The gateway remains the source of
// truth; the reconcile loop overwrites whatever is held here.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Store) UpdatePosition(position Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Position = position
}

func (s *Store) SetLastTradeTime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastTradeTime = t
}

func (s *Store) SetLastBarTime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastBarTime = t
}

func (s *Store) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := json.MarshalIndent(s.snapshot, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	return nil
}
