package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/DihyahAdib/ORBS-Trading-bot/internal/model"
)

// SQLiteRecorder persists ranges and signals to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external readers don't block the bot's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS opening_ranges (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			high        REAL,
			low         REAL,
			width       REAL,
			range_start INTEGER,
			range_end   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ranges_ts ON opening_ranges(timestamp)`,

		`CREATE TABLE IF NOT EXISTS breakout_signals (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			direction     TEXT,
			timeframe     TEXT,
			trigger_price REAL,
			orb_high      REAL,
			orb_low       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON breakout_signals(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRange(rng model.OpeningRange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO opening_ranges
		(timestamp, symbol, high, low, width, range_start, range_end)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), rng.Symbol, rng.High, rng.Low, rng.Width,
		rng.Start.Unix(), rng.End.Unix(),
	)
	return err
}

func (r *SQLiteRecorder) RecordSignal(sig model.BreakoutSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO breakout_signals
		(timestamp, symbol, direction, timeframe, trigger_price, orb_high, orb_low)
		VALUES (?,?,?,?,?,?,?)`,
		sig.DetectedAt.Unix(), sig.Symbol, string(sig.Direction), sig.Timeframe,
		sig.TriggerPrice, sig.Range.High, sig.Range.Low,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
