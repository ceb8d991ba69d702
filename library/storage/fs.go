package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Laisky/errors/v2"
)

// FS stores content as flat files under a base directory.
type FS struct {
	baseDir string
}

// NewFS creates the base directory if needed and returns a filesystem store.
func NewFS(baseDir string) (*FS, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "mkdir %q", baseDir)
	}

	return &FS{baseDir: baseDir}, nil
}

// Put writes data to a freshly generated location and returns its reference.
func (s *FS) Put(ctx context.Context, data []byte) (string, error) {
	ref, err := newContentRef()
	if err != nil {
		return "", errors.WithStack(err)
	}

	if err := os.WriteFile(filepath.Join(s.baseDir, ref), data, 0o600); err != nil {
		return "", errors.Wrapf(err, "write content %q", ref)
	}

	return ref, nil
}

// Get reads the content stored under ref.
func (s *FS) Get(ctx context.Context, ref string) ([]byte, error) {
	// refs are generated hex strings; reject anything that could escape baseDir
	if ref != filepath.Base(ref) {
		return nil, errors.WithStack(ErrNotExists)
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithStack(ErrNotExists)
		}
		return nil, errors.Wrapf(err, "read content %q", ref)
	}

	return data, nil
}
