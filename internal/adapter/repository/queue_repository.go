package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

// queueRepository handles analysis queue data operations
type queueRepository struct {
	db *gorm.DB
}

// NewQueueRepository creates a new analysis queue repository
func NewQueueRepository(db *gorm.DB) repositories.QueueRepository {
	return &queueRepository{db: db}
}

// Enqueue inserts a queue item; a second item for the same transcript is ignored
func (r *queueRepository) Enqueue(ctx context.Context, item *entities.AnalysisQueueItem) (bool, error) {
	if item == nil {
		return false, errors.New("queue item cannot be nil")
	}
	res := r.db.WithContext(ctx).
		Omit("Transcript").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transcript_id"}},
			DoNothing: true,
		}).
		Create(item)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FetchPending retrieves pending items, main room first then oldest first
func (r *queueRepository) FetchPending(ctx context.Context, limit int) ([]*entities.AnalysisQueueItem, error) {
	var items []*entities.AnalysisQueueItem
	if limit <= 0 {
		limit = 10
	}
	if err := r.db.WithContext(ctx).
		Preload("Transcript").
		Where("status = ?", entities.QueueStatusPending).
		Order("priority DESC").
		Order("created_at ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ClaimPending atomically marks a pending item as processing
func (r *queueRepository) ClaimPending(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.AnalysisQueueItem{}).
		Where("id = ? AND status = ?", id, entities.QueueStatusPending).
		Updates(map[string]interface{}{
			"status":     entities.QueueStatusProcessing,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkCompleted marks claimed items as completed
func (r *queueRepository) MarkCompleted(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entities.AnalysisQueueItem{}).
		Where("id IN ? AND status = ?", ids, entities.QueueStatusProcessing).
		Updates(map[string]interface{}{
			"status":        entities.QueueStatusCompleted,
			"error_message": nil,
			"updated_at":    time.Now(),
		}).Error
}

// MarkFailed marks claimed items as failed and increments their retry count
func (r *queueRepository) MarkFailed(ctx context.Context, ids []uuid.UUID, errMsg string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entities.AnalysisQueueItem{}).
		Where("id IN ? AND status = ?", ids, entities.QueueStatusProcessing).
		Updates(map[string]interface{}{
			"status":        entities.QueueStatusFailed,
			"error_message": errMsg,
			"retry_count":   gorm.Expr("retry_count + 1"),
			"updated_at":    time.Now(),
		}).Error
}

// ListFailed retrieves failed items that are still under the retry budget
func (r *queueRepository) ListFailed(ctx context.Context, maxRetries int) ([]*entities.AnalysisQueueItem, error) {
	var items []*entities.AnalysisQueueItem
	if err := r.db.WithContext(ctx).
		Where("status = ? AND retry_count < ?", entities.QueueStatusFailed, maxRetries).
		Order("updated_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Requeue moves failed items back to pending
func (r *queueRepository) Requeue(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&entities.AnalysisQueueItem{}).
		Where("id IN ? AND status = ?", ids, entities.QueueStatusFailed).
		Updates(map[string]interface{}{
			"status":     entities.QueueStatusPending,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

// ResetStale returns abandoned claims to pending. The retry budget is untouched.
func (r *queueRepository) ResetStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.AnalysisQueueItem{}).
		Where("status = ? AND updated_at < ?", entities.QueueStatusProcessing, cutoff).
		Updates(map[string]interface{}{
			"status":     entities.QueueStatusPending,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

// CountByStatus counts queue items per status
func (r *queueRepository) CountByStatus(ctx context.Context) (map[entities.QueueStatus]int64, error) {
	var rows []struct {
		Status entities.QueueStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&entities.AnalysisQueueItem{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := map[entities.QueueStatus]int64{
		entities.QueueStatusPending:    0,
		entities.QueueStatusProcessing: 0,
		entities.QueueStatusCompleted:  0,
		entities.QueueStatusFailed:     0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// List retrieves queue items, newest first, optionally filtered by status
func (r *queueRepository) List(ctx context.Context, status entities.QueueStatus, limit int) ([]*entities.AnalysisQueueItem, error) {
	var items []*entities.AnalysisQueueItem
	if limit <= 0 {
		limit = 100
	}
	query := r.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
