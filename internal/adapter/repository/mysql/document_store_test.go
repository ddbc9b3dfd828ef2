package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"waqf-platform-backend/internal/domain/docstore"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- SQLite-friendly schema only for tests (no mediumblob) ---

type documentSQLite struct {
	ID          uint64    `gorm:"primaryKey;column:id"`
	Collection  string    `gorm:"size:64;uniqueIndex:ux_documents_collection_key;column:collection"`
	DocKey      string    `gorm:"size:128;uniqueIndex:ux_documents_collection_key;column:doc_key"`
	Data        []byte    `gorm:"type:blob;column:data"`
	Version     int64     `gorm:"column:version"`
	Description string    `gorm:"type:text;column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (documentSQLite) TableName() string { return "documents" }

// openTestDB creates an in-memory sqlite DB and migrates ONLY the sqlite-safe schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&documentSQLite{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func TestSetAndGet(t *testing.T) {
	store := NewDocumentStore(openTestDB(t))
	ctx := context.Background()

	created, err := store.Set(ctx, "waqfs", "w1", docstore.SetDoc{Data: []byte(`{"a":1}`), Description: "first"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Version != 1 {
		t.Fatalf("version=%d", created.Version)
	}

	got, err := store.Get(ctx, "waqfs", "w1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.Data) != `{"a":1}` || got.Description != "first" {
		t.Fatalf("doc=%+v", got)
	}
}

func TestGet_Missing(t *testing.T) {
	store := NewDocumentStore(openTestDB(t))
	_, err := store.Get(context.Background(), "waqfs", "nope")
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestSet_VersionedUpdate(t *testing.T) {
	store := NewDocumentStore(openTestDB(t))
	ctx := context.Background()

	if _, err := store.Set(ctx, "waqfs", "w1", docstore.SetDoc{Data: []byte(`{"a":1}`)}); err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := store.Set(ctx, "waqfs", "w1", docstore.SetDoc{Data: []byte(`{"a":2}`), Version: 1})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("version=%d", updated.Version)
	}

	// stale version loses
	_, err = store.Set(ctx, "waqfs", "w1", docstore.SetDoc{Data: []byte(`{"a":3}`), Version: 1})
	if !errors.Is(err, docstore.ErrVersionConflict) {
		t.Fatalf("err=%v", err)
	}

	// create against an existing key loses too
	_, err = store.Set(ctx, "waqfs", "w1", docstore.SetDoc{Data: []byte(`{"a":4}`)})
	if !errors.Is(err, docstore.ErrVersionConflict) {
		t.Fatalf("err=%v", err)
	}
}

func TestSet_UpdateMissingDoc(t *testing.T) {
	store := NewDocumentStore(openTestDB(t))
	_, err := store.Set(context.Background(), "waqfs", "ghost", docstore.SetDoc{Data: []byte(`{}`), Version: 1})
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestDelete_Versioned(t *testing.T) {
	store := NewDocumentStore(openTestDB(t))
	ctx := context.Background()

	if _, err := store.Set(ctx, "waqfs", "w1", docstore.SetDoc{Data: []byte(`{}`)}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Delete(ctx, "waqfs", "w1", 99); !errors.Is(err, docstore.ErrVersionConflict) {
		t.Fatalf("stale delete err=%v", err)
	}
	if err := store.Delete(ctx, "waqfs", "w1", 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "waqfs", "w1"); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("get after delete err=%v", err)
	}
	if err := store.Delete(ctx, "waqfs", "w1", 1); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("double delete err=%v", err)
	}
}

func TestList_ScopedToCollection(t *testing.T) {
	store := NewDocumentStore(openTestDB(t))
	ctx := context.Background()

	for _, k := range []string{"b", "a"} {
		if _, err := store.Set(ctx, "waqfs", k, docstore.SetDoc{Data: []byte(`{}`)}); err != nil {
			t.Fatalf("seed %s: %v", k, err)
		}
	}
	if _, err := store.Set(ctx, "donations", "d1", docstore.SetDoc{Data: []byte(`{}`)}); err != nil {
		t.Fatalf("seed donation: %v", err)
	}

	docs, err := store.List(ctx, "waqfs")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 2 || docs[0].Key != "a" || docs[1].Key != "b" {
		t.Fatalf("docs=%+v", docs)
	}
}
