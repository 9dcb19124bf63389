package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists apply history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS apply_attempts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			scrip      TEXT,
			company    TEXT,
			close_date TEXT,
			account    TEXT,
			quantity   INTEGER,
			applied    INTEGER,
			message    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_ts ON apply_attempts(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_scrip ON apply_attempts(scrip, close_date)`,

		`CREATE TABLE IF NOT EXISTS batches (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			scrip         TEXT,
			company       TEXT,
			close_date    TEXT,
			success_count INTEGER,
			failed_count  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_batches_ts ON batches(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAttempt(att *ApplyAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	applied := 0
	if att.Applied {
		applied = 1
	}
	_, err := r.db.Exec(`INSERT INTO apply_attempts
		(timestamp, scrip, company, close_date, account, quantity, applied, message)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), att.Scrip, att.Company, att.CloseDate,
		att.Account, att.Quantity, applied, att.Message,
	)
	return err
}

func (r *SQLiteRecorder) RecordBatch(b *BatchOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO batches
		(timestamp, scrip, company, close_date, success_count, failed_count)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), b.Scrip, b.Company, b.CloseDate,
		b.SuccessCount, b.FailedCount,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
