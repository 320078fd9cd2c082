package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"marketbot/internal/domain"

	_ "modernc.org/sqlite"
)

// Store keeps deliverable product units in SQLite, one row per unit, FIFO by
// insertion. A single connection plus the store mutex gives the pop/push-back
// pair single-writer semantics, which is what keeps the delivery
// compensation atomic when deliveries for the same listing ever overlap.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *slog.Logger
}

func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create inventory directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open inventory database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("inventory migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS units (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		listing     TEXT NOT NULL,
		content     TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_units_listing ON units(listing, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error { return s.db.Close() }

// Add appends units to a listing's stock.
func (s *Store) Add(ctx context.Context, listing string, items ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add units: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO units (listing, content) VALUES (?, ?)`, listing, item); err != nil {
			return fmt.Errorf("add units: %w", err)
		}
	}
	return tx.Commit()
}

// popOne removes and returns the oldest unit for listing.
func (s *Store) popOne(ctx context.Context, listing string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("pop unit: %w", err)
	}
	defer tx.Rollback()

	var id int64
	var content string
	err = tx.QueryRowContext(ctx,
		`SELECT id, content FROM units WHERE listing = ? ORDER BY id LIMIT 1`, listing).
		Scan(&id, &content)
	if err == sql.ErrNoRows {
		return "", domain.ErrInventoryEmpty
	}
	if err != nil {
		return "", fmt.Errorf("pop unit: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM units WHERE id = ?`, id); err != nil {
		return "", fmt.Errorf("pop unit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("pop unit: %w", err)
	}
	return content, nil
}

// pushBack reinserts a unit that was popped but not delivered.
func (s *Store) pushBack(ctx context.Context, listing, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO units (listing, content) VALUES (?, ?)`, listing, content)
	if err != nil {
		return fmt.Errorf("push back unit: %w", err)
	}
	return nil
}

func (s *Store) count(ctx context.Context, listing string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM units WHERE listing = ?`, listing).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count units: %w", err)
	}
	return n, nil
}

// Listings returns the listing names that currently have stock.
func (s *Store) Listings(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT listing FROM units ORDER BY listing`)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list listings: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Source returns the inventory source bound to one listing name. The bool is
// always true: an unknown listing is simply an empty source, matching how
// stock behaves when sold out.
func (s *Store) Source(name string) (domain.InventorySource, bool) {
	return &listingStock{store: s, listing: name}, true
}

// listingStock adapts one listing's rows to domain.InventorySource.
type listingStock struct {
	store   *Store
	listing string
}

func (l *listingStock) PopOne(ctx context.Context) (string, error) {
	return l.store.popOne(ctx, l.listing)
}

func (l *listingStock) PushBack(ctx context.Context, item string) error {
	return l.store.pushBack(ctx, l.listing, item)
}

func (l *listingStock) Count(ctx context.Context) (int, error) {
	return l.store.count(ctx, l.listing)
}
