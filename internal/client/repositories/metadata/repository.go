// Package metadata stores small key/value settings of the local replica,
// such as the sync cursor and quota states.
package metadata

import (
	"context"
	"time"
)

// KeyLastSyncAt holds the cursor of the last completed sync cycle.
const KeyLastSyncAt = "last_sync_at"

type Repository interface {
	// Get returns (nil, nil) for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// GetTime returns nil for a missing key.
	GetTime(ctx context.Context, key string) (*time.Time, error)
	SetTime(ctx context.Context, key string, t time.Time) error
}
