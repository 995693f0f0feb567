// Package session decides where each mode's session lives and how it is
// read back.
package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when a key holds nothing.
var ErrNotFound = errors.New("session: not found")

// Store is a flat string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
