package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jobtailor/internal/shared/storage/object"
)

// Store keeps archived uploads under a directory on disk.
type Store struct {
	root string
}

// New creates a local object store rooted at dir.
func New(dir string) object.ObjectStore {
	return &Store{root: dir}
}

// Save writes to a temp file next to the target and renames it into place, so
// a crashed write never leaves a partial upload under a valid key.
func (s *Store) Save(ctx context.Context, owner string, fileName string, r io.Reader) (string, int64, string, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}
	key, err := object.NewKey(owner, fileName)
	if err != nil {
		return "", 0, "", err
	}
	mimeType, body, err := object.Sniff(r)
	if err != nil {
		return "", 0, "", err
	}
	dst, err := s.path(key)
	if err != nil {
		return "", 0, "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", 0, "", fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", 0, "", fmt.Errorf("create temp file: %w", err)
	}
	size, copyErr := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp.Name())
		if copyErr == nil {
			copyErr = closeErr
		}
		return "", 0, "", fmt.Errorf("write upload: %w", copyErr)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, "", fmt.Errorf("store upload: %w", err)
	}
	return key, size, mimeType, nil
}

// Open opens an archived upload.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(storageKey)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// path maps a key onto the root, refusing anything that escapes it.
func (s *Store) path(storageKey string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(storageKey))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", storageKey)
	}
	return filepath.Join(s.root, clean), nil
}
