// Package db defines the key-value storage contract used by the embedding cache
// and the token budget.
package db

import (
	"context"
	"time"
)

// Store is the database facade combining all sub-interfaces.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore holds cached query vectors and windowed token counters.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	PutExpiring(ctx context.Context, key string, value []byte, ttl time.Duration) error
	AddToCounter(ctx context.Context, key string, delta int64, retention time.Duration) (int64, error)
}
