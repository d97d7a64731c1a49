// Package storage persists categories, expenses and goals as JSON documents
// in a string keyed store, the same shape the data had in browser localStorage.
package storage

import (
	"context"
	"errors"
)

// Keys of the three persisted collections.
const (
	KeyCategories = "categorias"
	KeyExpenses   = "gastos"
	KeyGoals      = "metas"
)

// Keys lists every persisted key in load order.
var Keys = []string{KeyCategories, KeyExpenses, KeyGoals}

// ErrInvalidSnapshot is returned when an imported dump is not a JSON object.
var ErrInvalidSnapshot = errors.New("invalid storage snapshot")

// KV is a flat key/value store. Get reports whether the key exists.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Closer is implemented by backends holding resources.
type Closer interface {
	Close() error
}
