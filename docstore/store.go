// Package docstore treats a managed object store as a document database:
// JSON blobs addressed by key, listed by prefix. There is no locking, no
// version token and no cross-document transaction; two concurrent writers
// of the same key race and the last write wins.
package docstore

import (
	"context"
	"errors"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a stored document without loading its body.
type ObjectInfo struct {
	Key     string    `json:"key"`
	Size    int64     `json:"size"`
	Updated time.Time `json:"updated"`
}

// Store is the minimal surface the ledgers need. The GCS implementation is
// used in production; the memory implementation backs tests and local dev.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
