// Package feedback stores customer feedback per product in sqlite. The most
// recent unresolved entry is what the backend recommends as a new issue.
package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("feedback not found")

type Entry struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Resolved    bool      `json:"resolved"`
	CreatedAt   time.Time `json:"createdAt"`
}

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open feedback db: %w", err)
	}
	// sqlite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping feedback db: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
    CREATE TABLE IF NOT EXISTS feedback (
        id TEXT PRIMARY KEY,
        product_id TEXT NOT NULL,
        title TEXT NOT NULL,
        description TEXT NOT NULL,
        resolved INTEGER NOT NULL DEFAULT 0,
        created_at INTEGER NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_feedback_product ON feedback(product_id, resolved, created_at);
    `
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create feedback tables: %w", err)
	}
	return nil
}

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Add records feedback and returns it with its id and timestamp set.
func (r *Repository) Add(ctx context.Context, e Entry) (Entry, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = r.now().UTC()
	e.Resolved = false
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feedback (id, product_id, title, description, resolved, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`,
		e.ID, e.ProductID, e.Title, e.Description, e.CreatedAt.UnixNano())
	if err != nil {
		return Entry{}, fmt.Errorf("insert feedback: %w", err)
	}
	return e, nil
}

// Resolve marks an entry so it is no longer recommended.
func (r *Repository) Resolve(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE feedback SET resolved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("resolve feedback: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve feedback: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Latest returns the newest unresolved entry for a product, or nil.
func (r *Repository) Latest(ctx context.Context, productID string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, product_id, title, description, resolved, created_at
		FROM feedback
		WHERE product_id = ? AND resolved = 0
		ORDER BY created_at DESC
		LIMIT 1`, productID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest feedback: %w", err)
	}
	return &e, nil
}

// List returns every entry for a product, newest first.
func (r *Repository) List(ctx context.Context, productID string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, title, description, resolved, created_at
		FROM feedback
		WHERE product_id = ?
		ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list feedback: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e        Entry
		resolved int
		created  int64
	)
	if err := s.Scan(&e.ID, &e.ProductID, &e.Title, &e.Description, &resolved, &created); err != nil {
		return Entry{}, err
	}
	e.Resolved = resolved != 0
	e.CreatedAt = time.Unix(0, created).UTC()
	return e, nil
}
