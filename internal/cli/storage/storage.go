// Package storage holds the device-local key-value slots the CLI persists
// between runs: the bearer token and the serialized user record.
//
// Every backend follows the same contract:
//   - Get returns ErrNotFound when the key has never been set or was removed.
//   - Set overwrites any previous value.
//   - Remove is idempotent; removing an absent key is not an error.
//
// No transactionality across keys is offered.
package storage

import (
	"context"
	"errors"
)

// Slot names used by the session store.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is an opaque string-keyed persistent store
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
