package repository

import (
	"context"
	"database/sql"
	"fmt"

	"vocabtrainer/internal/database"
)

// KVRepository stores opaque values by key in kv_store
type KVRepository struct {
	db database.DBTX
}

func NewKVRepository(db database.DBTX) *KVRepository {
	return &KVRepository{db: db}
}

// Get retrieves a value by key; found is false when the key is absent
func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	query := `SELECT store_value FROM kv_store WHERE store_key = ?`
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Set updates or inserts a value
func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	query := r.db.GetDialect().UpsertKVQuery()
	if _, err := r.db.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}
