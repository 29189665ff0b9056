package storage

import (
	"context"
	"io"
)

// BlobStore holds exported documents under slash-separated keys.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error) // returns canonical key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	URL(key string) (string, error) // fs returns "file://..."
	// Delete removes key. A missing key is not an error.
	Delete(ctx context.Context, key string) error
}
