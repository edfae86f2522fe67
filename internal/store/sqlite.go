package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/insightdelivered/statement-intelligence/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS fingerprints (
    owner_id TEXT NOT NULL,
    hash TEXT NOT NULL,
    txn_date TEXT NOT NULL,            -- YYYY-MM-DD
    amount TEXT NOT NULL,              -- signed, two decimal places
    description TEXT NOT NULL,
    first_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (owner_id, hash, txn_date)
);

CREATE INDEX IF NOT EXISTS idx_fingerprints_owner
    ON fingerprints(owner_id);
`

// SQLiteStore is a FingerprintStore backed by a SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the fingerprint database at path.
// WAL mode lets readers proceed while an import is being recorded.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; serialising here avoids "database is locked".
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// FilterNew inserts every fingerprint in a single transaction; rows that
// already exist are the duplicates.
func (s *SQLiteStore) FilterNew(ctx context.Context, ownerID string, txns []models.Transaction) ([]models.Transaction, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fingerprints (owner_id, hash, txn_date, amount, description)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, hash, txn_date) DO NOTHING
	`)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	fresh := make([]models.Transaction, 0, len(txns))
	dups := 0
	for _, t := range txns {
		k := keyOf(ownerID, t)
		res, err := stmt.ExecContext(ctx, k.owner, k.hash, k.date,
			decimal.NewFromFloat(t.Amount).StringFixed(2), t.Description)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to record fingerprint: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			dups++
			continue
		}
		fresh = append(fresh, t)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return fresh, dups, nil
}

func (s *SQLiteStore) Count(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fingerprints WHERE owner_id = ?`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count fingerprints: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Forget(ctx context.Context, ownerID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fingerprints WHERE owner_id = ?`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete fingerprints: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
