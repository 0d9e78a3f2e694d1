package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// AnalysisRepository persists analysis output: summaries, topic graph and insights
type AnalysisRepository interface {
	// Summaries
	SaveSummary(ctx context.Context, s *entities.AnalysisSummary) error
	RecentSummaries(ctx context.Context, limit int) ([]*entities.AnalysisSummary, error)
	ListSummaries(ctx context.Context, meetingID string, limit int) ([]*entities.AnalysisSummary, error)

	// Topic graph
	FindTopicByLabel(ctx context.Context, label string) (*entities.TopicNode, error)
	SaveTopic(ctx context.Context, n *entities.TopicNode) error
	// UpsertEdge overwrites any existing edge with the same (source, target) pair.
	UpsertEdge(ctx context.Context, e *entities.TopicEdge) error
	ListTopics(ctx context.Context, limit int) ([]*entities.TopicNode, error)
	ListEdges(ctx context.Context, limit int) ([]*entities.TopicEdge, error)

	// Insights
	SaveInsight(ctx context.Context, i *entities.InsightEvent) error
	ListInsights(ctx context.Context, meetingID string, limit int) ([]*entities.InsightEvent, error)

	// Transaction runs fn against a repository bound to one database transaction.
	// Returning an error rolls every write back.
	Transaction(ctx context.Context, fn func(tx AnalysisRepository) error) error
}

// PromptRepository reads and edits prompt configs
type PromptRepository interface {
	// ActivePrompts returns active global prompts and active room prompts for roomNumber,
	// oldest first.
	ActivePrompts(ctx context.Context, roomNumber int) ([]*entities.PromptConfig, error)
	ListPrompts(ctx context.Context) ([]*entities.PromptConfig, error)
	GetPromptByID(ctx context.Context, id uuid.UUID) (*entities.PromptConfig, error)
	SavePrompt(ctx context.Context, p *entities.PromptConfig) error
}

// DocumentRepository reads reference document chunks
type DocumentRepository interface {
	SampleChunks(ctx context.Context, limit int) ([]*entities.ReferenceChunk, error)
}
