package object

import (
	"context"
	"io"
)

// ObjectStore archives original résumé uploads. Keys are opaque to callers
// and namespaced per session.
type ObjectStore interface {
	Save(ctx context.Context, owner string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
