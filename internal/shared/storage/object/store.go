package object

import (
	"context"
	"io"
)

// Store defines the contract for saving and retrieving binary artifacts.
// Keys are content-addressed (inputs/{sha256}.pdf, outputs/{sha256}.xlsx),
// so writing the same key twice is harmless.
type Store interface {
	Save(ctx context.Context, storageKey string, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Exists(ctx context.Context, storageKey string) (bool, error)
}
