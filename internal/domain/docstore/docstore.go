package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound: no document under (collection, key). Not retryable.
	ErrNotFound = errors.New("document not found")
	// ErrVersionConflict: the write lost an optimistic-versioning race.
	// Retryable after re-reading the document.
	ErrVersionConflict = errors.New("document version conflict")
)

// Document is one stored record. Data is an opaque encoded payload; the
// store never interprets it.
type Document struct {
	Collection  string
	Key         string
	Data        []byte
	Version     int64
	Description string
}

// SetDoc is a proposed write. Version must equal the stored version
// (0 for creation) or the write fails with ErrVersionConflict.
type SetDoc struct {
	Data        []byte
	Description string
	Version     int64
}

// Store is the key-value transactional document store collaborator,
// keyed by (collection, key) with per-document optimistic versioning.
type Store interface {
	Get(ctx context.Context, collection, key string) (*Document, error)
	Set(ctx context.Context, collection, key string, doc SetDoc) (*Document, error)
	Delete(ctx context.Context, collection, key string, version int64) error
	List(ctx context.Context, collection string) ([]Document, error)
}

// Locker serializes read-modify-write cycles against a single waqf
// document, preventing lost updates on contribution_tranches and
// financial.current_balance.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func() error) error
}
