package dispatch

import (
	"context"
	"errors"
	"log"

	"waqf-platform-backend/internal/domain/docstore"
)

// WriteService routes document writes through the per-collection hooks:
// assert pre-commit (which may rewrite the proposed payload), commit
// with optimistic versioning, then the post-commit side effects.
type WriteService struct {
	store docstore.Store
	hooks map[string]docstore.Hook
}

func NewWriteService(store docstore.Store) *WriteService {
	return &WriteService{
		store: store,
		hooks: make(map[string]docstore.Hook),
	}
}

// Register attaches a hook to a collection. Collections without a hook
// accept writes without validation.
func (s *WriteService) Register(collection string, h docstore.Hook) {
	s.hooks[collection] = h
}

// Set validates and commits one document write. The stored version must
// match doc.Version (zero for creation) or the write fails with
// docstore.ErrVersionConflict.
func (s *WriteService) Set(ctx context.Context, caller, collection, key string, doc docstore.SetDoc) (*docstore.Document, error) {
	current, err := s.store.Get(ctx, collection, key)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return nil, err
	}

	hook := s.hooks[collection]
	if hook != nil {
		sc := &docstore.SetContext{
			Collection: collection,
			Key:        key,
			Caller:     caller,
			Proposed:   doc.Data,
			Current:    current,
		}
		if err := hook.AssertSet(ctx, sc); err != nil {
			return nil, err
		}
		doc.Data = sc.Proposed
	}

	committed, err := s.store.Set(ctx, collection, key, doc)
	if err != nil {
		return nil, err
	}

	if hook != nil {
		cc := &docstore.ChangeContext{
			Collection: collection,
			Key:        key,
			Caller:     caller,
			Before:     current,
			After:      *committed,
		}
		if err := hook.OnSet(ctx, cc); err != nil {
			// The write has committed; the side effect failed.
			log.Printf("on_set for %s/%s failed: %v", collection, key, err)
			return committed, err
		}
	}
	return committed, nil
}

// Delete validates and removes one document.
func (s *WriteService) Delete(ctx context.Context, caller, collection, key string, version int64) error {
	current, err := s.store.Get(ctx, collection, key)
	if err != nil {
		return err
	}

	if hook := s.hooks[collection]; hook != nil {
		dc := &docstore.DeleteContext{
			Collection: collection,
			Key:        key,
			Caller:     caller,
			Current:    current,
		}
		if err := hook.AssertDelete(ctx, dc); err != nil {
			return err
		}
	}
	return s.store.Delete(ctx, collection, key, version)
}

// Get reads one document.
func (s *WriteService) Get(ctx context.Context, collection, key string) (*docstore.Document, error) {
	return s.store.Get(ctx, collection, key)
}

// List reads a whole collection.
func (s *WriteService) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	return s.store.List(ctx, collection)
}
