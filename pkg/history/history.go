// Package history keeps a local ledger of reconciled generation runs
// so operators can review what past invocations actually cost.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// RunRecord is one reconciled generation run.
type RunRecord struct {
	ID              string    `json:"id"`
	File            string    `json:"file"`
	Provider        string    `json:"provider"`
	Model           string    `json:"model"`
	InputTokens     int64     `json:"input_tokens"`
	OutputTokens    int64     `json:"output_tokens"`
	ReasoningTokens int64     `json:"reasoning_tokens"`
	CostUSD         float64   `json:"cost_usd"`
	Timestamp       time.Time `json:"timestamp"`
}

// Summary aggregates the ledger.
type Summary struct {
	TotalCostUSD      float64 `json:"total_cost_usd"`
	TotalInputTokens  int64   `json:"total_input_tokens"`
	TotalOutputTokens int64   `json:"total_output_tokens"`
	RunCount          int64   `json:"run_count"`
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id               TEXT PRIMARY KEY,
		file             TEXT NOT NULL,
		provider         TEXT NOT NULL,
		model            TEXT NOT NULL,
		input_tokens     INTEGER NOT NULL DEFAULT 0,
		output_tokens    INTEGER NOT NULL DEFAULT 0,
		reasoning_tokens INTEGER NOT NULL DEFAULT 0,
		cost_usd         REAL NOT NULL DEFAULT 0.0,
		timestamp        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_provider ON runs(provider);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);`,
}

// Store is an SQLite-backed run ledger.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the ledger database at the given path.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var current int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}
	return nil
}

// Record persists a run, filling in the ID and timestamp when unset.
func (s *Store) Record(ctx context.Context, record *RunRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, file, provider, model, input_tokens, output_tokens, reasoning_tokens, cost_usd, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.File, record.Provider, record.Model,
		record.InputTokens, record.OutputTokens, record.ReasoningTokens,
		record.CostUSD, record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// Recent returns the newest runs, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file, provider, model, input_tokens, output_tokens, reasoning_tokens, cost_usd, timestamp
		 FROM runs ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.File, &r.Provider, &r.Model,
			&r.InputTokens, &r.OutputTokens, &r.ReasoningTokens,
			&r.CostUSD, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Summarize aggregates total spend and tokens across all runs.
func (s *Store) Summarize(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	err := s.db.QueryRowContext(ctx, `SELECT
		COALESCE(SUM(cost_usd), 0),
		COALESCE(SUM(input_tokens), 0),
		COALESCE(SUM(output_tokens), 0),
		COUNT(*)
	FROM runs`).Scan(
		&summary.TotalCostUSD,
		&summary.TotalInputTokens,
		&summary.TotalOutputTokens,
		&summary.RunCount,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate runs: %w", err)
	}
	return summary, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
