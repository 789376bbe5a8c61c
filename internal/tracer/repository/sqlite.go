package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ============================================================
// SQLite Key-Value Store
// ============================================================

var (
	ErrNotFound      = errors.New("not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteKV - долговременное хранилище строк по ключу с квотой на
// суммарный объем значений, как у localStorage браузера.
type SQLiteKV struct {
	db       *sql.DB
	maxBytes int64
}

// New создает хранилище. maxBytes <= 0 отключает квоту.
func New(db *sql.DB, maxBytes int64) *SQLiteKV {
	return &SQLiteKV{db: db, maxBytes: maxBytes}
}

// Init создает таблицы.
func (r *SQLiteKV) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (r *SQLiteKV) Get(ctx context.Context, key string) (string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set перезаписывает значение. Если новый объем превысит квоту,
// возвращает ErrQuotaExceeded и ничего не пишет.
func (r *SQLiteKV) Set(ctx context.Context, key, value string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if r.maxBytes > 0 {
		var used int64
		row := tx.QueryRowContext(ctx, `SELECT COALESCE(SUM(LENGTH(CAST(value AS BLOB))), 0) FROM kv WHERE key != ?`, key)
		if err := row.Scan(&used); err != nil {
			return fmt.Errorf("measure usage: %w", err)
		}
		if used+int64(len(value)) > r.maxBytes {
			return ErrQuotaExceeded
		}
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
    `, key, value)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return tx.Commit()
}

func (r *SQLiteKV) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
