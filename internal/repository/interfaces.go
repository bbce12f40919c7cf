package repository

import (
	"context"
)

// BlobRepo is the key-value persistence substrate. Values are opaque text;
// callers own encoding. Get returns ErrNotFound for absent keys.
type BlobRepo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
