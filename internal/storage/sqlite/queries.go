package sqlite

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Entry struct {
	Key       string
	Value     []byte
	Version   int64
	UpdatedAt string
}

const getEntry = `-- name: GetEntry :one
SELECT key, value, version, updated_at FROM kv WHERE key = ?
`

func (q *Queries) GetEntry(ctx context.Context, key string) (Entry, error) {
	row := q.db.QueryRowContext(ctx, getEntry, key)
	var e Entry
	err := row.Scan(&e.Key, &e.Value, &e.Version, &e.UpdatedAt)
	return e, err
}

const upsertEntry = `-- name: UpsertEntry :exec
INSERT INTO kv (key, value, version, updated_at)
VALUES (?, ?, 1, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET
    value = excluded.value,
    version = kv.version + 1,
    updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertEntry(ctx context.Context, key string, value []byte) error {
	_, err := q.db.ExecContext(ctx, upsertEntry, key, value)
	return err
}

const listKeys = `-- name: ListKeys :many
SELECT key FROM kv ORDER BY key
`

func (q *Queries) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listKeys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		items = append(items, k)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
