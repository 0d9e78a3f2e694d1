package analysis

import (
	"context"
	"time"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// KeyValueStore holds small shared state such as the last run report.
// Satisfied by cache.MemoryStore and cache.RedisStore.
type KeyValueStore interface {
	Set(key string, value string, expiration time.Duration)
	Get(key string) (string, bool)
}

// EventPublisher pushes committed analysis output to live subscribers
type EventPublisher interface {
	Publish(ctx context.Context, event *entities.PipelineEvent) error
}

// ResponseArchive stores raw model output
type ResponseArchive interface {
	UploadText(ctx context.Context, objectName string, content string) error
}

// GraphProjector mirrors the topic graph into a graph database
type GraphProjector interface {
	ProjectTopics(ctx context.Context, nodes []*entities.TopicNode, links []entities.TopicLink) error
}
