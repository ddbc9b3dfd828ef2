package storemock

import (
	"context"
	"sort"
	"sync"

	"waqf-platform-backend/internal/domain/docstore"
)

// Store is a function-backed mock that satisfies docstore.Store.
// Only methods you need are included; add more as tests require.
type Store struct {
	GetFn    func(ctx context.Context, collection, key string) (*docstore.Document, error)
	SetFn    func(ctx context.Context, collection, key string, doc docstore.SetDoc) (*docstore.Document, error)
	DeleteFn func(ctx context.Context, collection, key string, version int64) error
	ListFn   func(ctx context.Context, collection string) ([]docstore.Document, error)
}

func (m *Store) Get(ctx context.Context, collection, key string) (*docstore.Document, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, collection, key)
	}
	return nil, docstore.ErrNotFound
}

func (m *Store) Set(ctx context.Context, collection, key string, doc docstore.SetDoc) (*docstore.Document, error) {
	if m.SetFn != nil {
		return m.SetFn(ctx, collection, key, doc)
	}
	return &docstore.Document{
		Collection:  collection,
		Key:         key,
		Data:        doc.Data,
		Version:     doc.Version + 1,
		Description: doc.Description,
	}, nil
}

func (m *Store) Delete(ctx context.Context, collection, key string, version int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, collection, key, version)
	}
	return nil
}

func (m *Store) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, collection)
	}
	return nil, nil
}

// Mem is an in-memory docstore.Store with real versioning semantics,
// for tests that exercise whole read-modify-write cycles.
type Mem struct {
	mu   sync.Mutex
	docs map[string]*docstore.Document
}

func NewMem() *Mem {
	return &Mem{docs: make(map[string]*docstore.Document)}
}

func memKey(collection, key string) string { return collection + "/" + key }

func (m *Mem) Get(ctx context.Context, collection, key string) (*docstore.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[memKey(collection, key)]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	cp := *doc
	cp.Data = append([]byte(nil), doc.Data...)
	return &cp, nil
}

func (m *Mem) Set(ctx context.Context, collection, key string, doc docstore.SetDoc) (*docstore.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(collection, key)
	cur, exists := m.docs[k]
	if doc.Version == 0 {
		if exists {
			return nil, docstore.ErrVersionConflict
		}
	} else {
		if !exists {
			return nil, docstore.ErrNotFound
		}
		if cur.Version != doc.Version {
			return nil, docstore.ErrVersionConflict
		}
	}
	next := &docstore.Document{
		Collection:  collection,
		Key:         key,
		Data:        append([]byte(nil), doc.Data...),
		Version:     doc.Version + 1,
		Description: doc.Description,
	}
	m.docs[k] = next
	cp := *next
	return &cp, nil
}

func (m *Mem) Delete(ctx context.Context, collection, key string, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(collection, key)
	cur, exists := m.docs[k]
	if !exists {
		return docstore.ErrNotFound
	}
	if cur.Version != version {
		return docstore.ErrVersionConflict
	}
	delete(m.docs, k)
	return nil
}

func (m *Mem) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []docstore.Document
	for _, doc := range m.docs {
		if doc.Collection == collection {
			out = append(out, *doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// NoopLocker satisfies docstore.Locker without locking.
type NoopLocker struct{}

func (NoopLocker) WithLock(ctx context.Context, key string, fn func() error) error { return fn() }
