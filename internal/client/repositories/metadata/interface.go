// Package metadata is the client's durable key/value storage. It backs the
// token pair and the persisted room selection.
package metadata

import (
	"context"
)

// Repository is a string-keyed byte store. Get returns (nil, nil) for an
// absent key. SetMany and DeleteMany apply all keys or none.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
