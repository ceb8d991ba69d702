// Package storage persists uploaded file content under opaque,
// collision-free references, decoupled from the metadata store.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/Laisky/errors/v2"
)

// ErrNotExists means the referenced content is absent from the backend.
var ErrNotExists = errors.New("content not exists")

// Store writes and reads binary payloads addressed by opaque references.
//
// Put generates a fresh reference for every payload; callers never choose
// locations. Get returns ErrNotExists for unknown references, any other
// error is a backend failure.
type Store interface {
	Put(ctx context.Context, data []byte) (ref string, err error)
	Get(ctx context.Context, ref string) ([]byte, error)
}

// newContentRef returns a random 128-bit reference in hex.
func newContentRef() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "read rand")
	}

	return hex.EncodeToString(buf), nil
}
