package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

// transcriptRepository handles transcript data operations
type transcriptRepository struct {
	db *gorm.DB
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) repositories.TranscriptRepository {
	return &transcriptRepository{db: db}
}

// SaveTranscript creates a new transcript line
func (r *transcriptRepository) SaveTranscript(ctx context.Context, t *entities.Transcript) error {
	if t == nil {
		return errors.New("transcript cannot be nil")
	}
	return r.db.WithContext(ctx).Create(t).Error
}

// GetTranscriptByID retrieves a transcript by ID
func (r *transcriptRepository) GetTranscriptByID(ctx context.Context, id uuid.UUID) (*entities.Transcript, error) {
	var transcript entities.Transcript
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&transcript).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transcript, nil
}
