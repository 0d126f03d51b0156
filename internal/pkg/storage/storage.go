package storage

import (
	"context"
	"io"

	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"
)

var (
	ErrNotFound    = apperror.New(apperror.KindNotFound, "stored object not found")
	ErrInvalidPath = apperror.New(apperror.KindInvalidArgument, "invalid storage path")
)

// Storage keeps opaque blobs under slash separated relative keys.
type Storage interface {
	Save(ctx context.Context, key string, content io.Reader) error
	// Open returns the blob stored under key or ErrNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
