package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

type promptRepository struct {
	db *gorm.DB
}

// NewPromptRepository creates a new prompt config repository
func NewPromptRepository(db *gorm.DB) repositories.PromptRepository {
	return &promptRepository{db: db}
}

// ActivePrompts returns the active global prompts and the active prompts for one room
func (r *promptRepository) ActivePrompts(ctx context.Context, roomNumber int) ([]*entities.PromptConfig, error) {
	var out []*entities.PromptConfig
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where(r.db.Where("scope = ?", entities.PromptScopeGlobal).
			Or("scope = ? AND room_number = ?", entities.PromptScopeRoom, roomNumber)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *promptRepository) ListPrompts(ctx context.Context) ([]*entities.PromptConfig, error) {
	var out []*entities.PromptConfig
	if err := r.db.WithContext(ctx).
		Order("scope ASC").
		Order("room_number ASC").
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *promptRepository) GetPromptByID(ctx context.Context, id uuid.UUID) (*entities.PromptConfig, error) {
	var p entities.PromptConfig
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *promptRepository) SavePrompt(ctx context.Context, p *entities.PromptConfig) error {
	if p == nil {
		return errors.New("prompt cannot be nil")
	}
	return r.db.WithContext(ctx).Save(p).Error
}
