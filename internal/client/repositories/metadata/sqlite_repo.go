package metadata

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/clansession/internal/dbx"
)

type SQLiteRepository struct {
	db        dbx.DBTX
	namespace string
}

func NewSQLiteRepository(db dbx.DBTX, namespace string) *SQLiteRepository {
	return &SQLiteRepository{db: db, namespace: namespace}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE namespace = ? AND key = ?`, r.namespace, key).Scan(&value)
	if dbx.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s/%s]: %w", r.namespace, key, err)
	}
	return stored(value), nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (namespace, key, value) VALUES (?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value
	`, r.namespace, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s/%s]: %w", r.namespace, key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE namespace = ? AND key = ?`, r.namespace, key)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s/%s]: %w", r.namespace, key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE namespace = ?`, r.namespace)
	if err != nil {
		return fmt.Errorf("failed to clear metadata[%s]: %w", r.namespace, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM metadata WHERE namespace = ?`, r.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata[%s]: %w", r.namespace, err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		result[key] = stored(value)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metadata rows: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, fn func(tx Repository) error) error {
	return dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(&SQLiteRepository{db: tx, namespace: r.namespace})
	})
}

// SQLiteFactory hands out namespaced repositories over one database.
type SQLiteFactory struct {
	db *sql.DB
}

func NewSQLiteFactory(db *sql.DB) *SQLiteFactory {
	return &SQLiteFactory{db: db}
}

func (f *SQLiteFactory) Namespace(name string) Repository {
	return NewSQLiteRepository(f.db, name)
}
