package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"macross/internal/market"
)

// SQLiteRecorder persists bars, decisions, and executions to a SQLite
// database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so analysis tools can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bars (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			open      REAL,
			high      REAL,
			low       REAL,
			close     REAL,
			volume    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_ts ON bars(timestamp)`,

		`CREATE TABLE IF NOT EXISTS decisions (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			close        REAL,
			short_sma    REAL,
			long_sma     REAL,
			signal       INTEGER,
			target_qty   INTEGER,
			position_qty INTEGER,
			result       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_ts ON decisions(timestamp)`,

		`CREATE TABLE IF NOT EXISTS executions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			symbol     TEXT NOT NULL,
			side       TEXT,
			qty        INTEGER,
			target_qty INTEGER,
			order_id   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_executions_ts ON executions(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordBar(bar market.Bar) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO bars (timestamp, symbol, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?)`,
		bar.Time.Unix(), bar.Symbol, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
	)
	return err
}

func (r *SQLiteRecorder) RecordDecision(d Decision) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO decisions
		(timestamp, symbol, close, short_sma, long_sma, signal, target_qty, position_qty, result)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		d.Time.Unix(), d.Symbol, d.Close, d.ShortSMA, d.LongSMA,
		d.Signal, d.TargetQty, d.PositionQty, d.Result,
	)
	return err
}

func (r *SQLiteRecorder) RecordExecution(e Execution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO executions
		(timestamp, symbol, side, qty, target_qty, order_id)
		VALUES (?,?,?,?,?,?)`,
		e.Time.Unix(), e.Symbol, e.Side, e.Qty, e.TargetQty, e.OrderID,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
