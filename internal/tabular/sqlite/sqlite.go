// Package sqlite persists table snapshots in a local SQLite database, one
// JSON-encoded grid per table. This keeps the snapshot-store contract honest
// — Write still replaces the whole table — while giving the household a
// backend that works without network access.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lushlawncarepros/petersen-budget/internal/tabular"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

var _ tabular.SnapshotStore = (*Store)(nil)

// Open opens (creating if needed) the snapshot database at dbPath and runs
// migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{db: db}
	if err := s.seedDefaults(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed default tables: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// seedDefaults inserts header-only grids for the two known tables so a fresh
// database behaves like a fresh spreadsheet.
func (s *Store) seedDefaults(ctx context.Context) error {
	defaults := map[string][]string{
		tabular.TransactionsTable: tabular.TransactionHeader,
		tabular.CategoriesTable:   tabular.CategoryHeader,
	}
	for table, header := range defaults {
		blob, err := json.Marshal(tabular.HeaderGrid(header))
		if err != nil {
			return fmt.Errorf("marshal header grid: %w", err)
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO snapshots (table_name, grid, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(table_name) DO NOTHING`,
			table, string(blob), time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("seed %s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) Read(ctx context.Context, table string) ([][]any, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT grid FROM snapshots WHERE table_name = ?`, table).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", table, err)
	}
	var grid [][]any
	if err := json.Unmarshal([]byte(blob), &grid); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", table, err)
	}
	return grid, nil
}

func (s *Store) Write(ctx context.Context, table string, grid [][]any) error {
	blob, err := json.Marshal(grid)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", table, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE snapshots SET grid = ?, updated_at = ? WHERE table_name = ?`,
		string(blob), time.Now().UTC().Format(time.RFC3339), table)
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("unknown table %q", table)
	}
	return nil
}
