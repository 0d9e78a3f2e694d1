package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a read-only repository over reference document chunks
func NewDocumentRepository(db *gorm.DB) repositories.DocumentRepository {
	return &documentRepository{db: db}
}

// SampleChunks returns a fixed small sample of chunks, ordered for stable output
func (r *documentRepository) SampleChunks(ctx context.Context, limit int) ([]*entities.ReferenceChunk, error) {
	var out []*entities.ReferenceChunk
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("chunk_index ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
