package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tremor/internal/db"
)

// SQLiteBlobRepo implements BlobRepo on the blobs table.
type SQLiteBlobRepo struct {
	db db.DBTX
}

// NewSQLiteBlobRepo creates a repo bound to a *sql.DB or a transaction.
func NewSQLiteBlobRepo(db db.DBTX) *SQLiteBlobRepo {
	return &SQLiteBlobRepo{db: db}
}

func (r *SQLiteBlobRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("blob %q: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("reading blob %q: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteBlobRepo) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, value, nowUTC()); err != nil {
		return fmt.Errorf("writing blob %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (r *SQLiteBlobRepo) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("removing blob %q: %w", key, err)
	}
	return nil
}
