// Package metadata stores small opaque values by key in the local database.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns common.ErrorNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context, prefix string) (map[string][]byte, error)
}
