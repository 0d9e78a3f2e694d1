package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a repository for summaries, topics, edges and insights
func NewAnalysisRepository(db *gorm.DB) repositories.AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Transaction(ctx context.Context, fn func(tx repositories.AnalysisRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&analysisRepository{db: tx})
	})
}

func (r *analysisRepository) SaveSummary(ctx context.Context, s *entities.AnalysisSummary) error {
	if s == nil {
		return errors.New("summary cannot be nil")
	}
	return r.db.WithContext(ctx).Create(s).Error
}

// RecentSummaries returns the newest room summaries across all meetings
func (r *analysisRepository) RecentSummaries(ctx context.Context, limit int) ([]*entities.AnalysisSummary, error) {
	var out []*entities.AnalysisSummary
	if err := r.db.WithContext(ctx).
		Where("summary_type = ?", entities.SummaryTypeRoom).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *analysisRepository) ListSummaries(ctx context.Context, meetingID string, limit int) ([]*entities.AnalysisSummary, error) {
	var out []*entities.AnalysisSummary
	if limit <= 0 {
		limit = 50
	}
	query := r.db.WithContext(ctx)
	if meetingID != "" {
		query = query.Where("meeting_id = ?", meetingID)
	}
	if err := query.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindTopicByLabel looks a topic up by exact label. Returns nil, nil when absent.
func (r *analysisRepository) FindTopicByLabel(ctx context.Context, label string) (*entities.TopicNode, error) {
	var node entities.TopicNode
	if err := r.db.WithContext(ctx).Where("label = ?", label).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

func (r *analysisRepository) SaveTopic(ctx context.Context, n *entities.TopicNode) error {
	if n == nil {
		return errors.New("topic cannot be nil")
	}
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *analysisRepository) UpsertEdge(ctx context.Context, e *entities.TopicEdge) error {
	if e == nil {
		return errors.New("edge cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"relationship_type", "weight", "room_context", "updated_at"}),
		}).
		Create(e).Error
}

func (r *analysisRepository) ListTopics(ctx context.Context, limit int) ([]*entities.TopicNode, error) {
	var out []*entities.TopicNode
	if limit <= 0 {
		limit = 100
	}
	if err := r.db.WithContext(ctx).
		Order("importance_score DESC").
		Order("last_seen DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *analysisRepository) ListEdges(ctx context.Context, limit int) ([]*entities.TopicEdge, error) {
	var out []*entities.TopicEdge
	if limit <= 0 {
		limit = 200
	}
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *analysisRepository) SaveInsight(ctx context.Context, i *entities.InsightEvent) error {
	if i == nil {
		return errors.New("insight cannot be nil")
	}
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *analysisRepository) ListInsights(ctx context.Context, meetingID string, limit int) ([]*entities.InsightEvent, error) {
	var out []*entities.InsightEvent
	if limit <= 0 {
		limit = 50
	}
	query := r.db.WithContext(ctx)
	if meetingID != "" {
		query = query.Where("meeting_id = ?", meetingID)
	}
	if err := query.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
