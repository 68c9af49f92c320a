// Package metadata is the durable key/value store of the client. It holds
// the bearer credential and the tenant/station selection across restarts.
package metadata

import (
	"context"
)

// Repository is a string-keyed byte store. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
