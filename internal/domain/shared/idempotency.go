package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers delivery IDs that have already been handled
type IdempotencyStore interface {
	// MarkProcessed marks an ID as processed with a TTL.
	// Returns true if the ID was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an ID has already been processed
	IsProcessed(ctx context.Context, id string) (bool, error)

	// Release removes the mark so a redelivery of a failed ID is processed again.
	// Releasing an unknown ID is not an error.
	Release(ctx context.Context, id string) error

	// Close releases resources held by the store
	Close() error
}
