package blob

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means no blob has been saved yet.
	ErrNotFound = errors.New("blob: not found")
)

// Store persists a single opaque blob. Writes replace the previous blob
// wholesale; there is no partial update. Safe for one process instance only.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}
