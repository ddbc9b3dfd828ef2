package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"waqf-platform-backend/internal/domain/docstore"
)

// DocumentRecord is the storage row behind one (collection, key)
// document. The version column backs the optimistic concurrency check.
type DocumentRecord struct {
	ID          uint64    `gorm:"primaryKey;column:id"`
	Collection  string    `gorm:"size:64;uniqueIndex:ux_documents_collection_key;column:collection"`
	DocKey      string    `gorm:"size:128;uniqueIndex:ux_documents_collection_key;column:doc_key"`
	Data        []byte    `gorm:"type:mediumblob;column:data"`
	Version     int64     `gorm:"column:version"`
	Description string    `gorm:"type:text;column:description"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (DocumentRecord) TableName() string { return "documents" }

// Migrate creates the documents table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&DocumentRecord{})
}

type DocumentStore struct{ db *gorm.DB }

func NewDocumentStore(db *gorm.DB) *DocumentStore { return &DocumentStore{db: db} }

func (r *DocumentStore) Get(ctx context.Context, collection, key string) (*docstore.Document, error) {
	var rec DocumentRecord
	res := r.db.WithContext(ctx).
		Where("collection = ? AND doc_key = ?", collection, key).
		First(&rec)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, docstore.ErrNotFound
		}
		return nil, res.Error
	}
	return recordToDocument(&rec), nil
}

// Set commits a versioned write. Version 0 creates the document at
// version 1; any other value must match the stored version and bumps
// it by one. A mismatch surfaces as docstore.ErrVersionConflict.
func (r *DocumentStore) Set(ctx context.Context, collection, key string, doc docstore.SetDoc) (*docstore.Document, error) {
	if doc.Version == 0 {
		rec := DocumentRecord{
			Collection:  collection,
			DocKey:      key,
			Data:        doc.Data,
			Version:     1,
			Description: doc.Description,
		}
		if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, docstore.ErrVersionConflict
			}
			return nil, err
		}
		return recordToDocument(&rec), nil
	}

	res := r.db.WithContext(ctx).
		Model(&DocumentRecord{}).
		Where("collection = ? AND doc_key = ? AND version = ?", collection, key, doc.Version).
		Updates(map[string]any{
			"data":        doc.Data,
			"description": doc.Description,
			"version":     doc.Version + 1,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, r.conflictOrNotFound(ctx, collection, key)
	}

	return &docstore.Document{
		Collection:  collection,
		Key:         key,
		Data:        doc.Data,
		Version:     doc.Version + 1,
		Description: doc.Description,
	}, nil
}

func (r *DocumentStore) Delete(ctx context.Context, collection, key string, version int64) error {
	res := r.db.WithContext(ctx).
		Where("collection = ? AND doc_key = ? AND version = ?", collection, key, version).
		Delete(&DocumentRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.conflictOrNotFound(ctx, collection, key)
	}
	return nil
}

func (r *DocumentStore) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	var recs []DocumentRecord
	res := r.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("doc_key ASC").
		Find(&recs)
	if res.Error != nil {
		return nil, res.Error
	}
	out := make([]docstore.Document, 0, len(recs))
	for i := range recs {
		out = append(out, *recordToDocument(&recs[i]))
	}
	return out, nil
}

// conflictOrNotFound disambiguates a zero-row versioned write: the
// document either never existed or lost the version race.
func (r *DocumentStore) conflictOrNotFound(ctx context.Context, collection, key string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&DocumentRecord{}).
		Where("collection = ? AND doc_key = ?", collection, key).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return docstore.ErrNotFound
	}
	return docstore.ErrVersionConflict
}

func recordToDocument(rec *DocumentRecord) *docstore.Document {
	return &docstore.Document{
		Collection:  rec.Collection,
		Key:         rec.DocKey,
		Data:        rec.Data,
		Version:     rec.Version,
		Description: rec.Description,
	}
}
