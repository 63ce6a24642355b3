package metadata

import (
	"context"
)

// Repository is the client's persisted key-value store.
//
// Get returns (nil, nil) for a missing key. Apply writes a whole Batch
// atomically: either every change lands or none does, and the call returns
// only once the outcome is durable.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
	Apply(ctx context.Context, b Batch) error
}

// Batch is a set of writes and deletions applied as one unit. A key present
// in both is deleted.
type Batch struct {
	Set    map[string][]byte
	Delete []string
}

// Empty reports whether the batch has nothing to do.
func (b Batch) Empty() bool {
	return len(b.Set) == 0 && len(b.Delete) == 0
}
