package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// QueueRepository persists analysis queue items
type QueueRepository interface {
	// Enqueue inserts the item unless its transcript is already queued.
	Enqueue(ctx context.Context, item *entities.AnalysisQueueItem) (created bool, err error)
	// FetchPending returns pending items with their transcripts, priority DESC then created_at ASC.
	FetchPending(ctx context.Context, limit int) ([]*entities.AnalysisQueueItem, error)
	// ClaimPending moves one item pending→processing. False means another run claimed it first.
	ClaimPending(ctx context.Context, id uuid.UUID) (bool, error)
	MarkCompleted(ctx context.Context, ids []uuid.UUID) error
	// MarkFailed records the error and increments retry_count.
	MarkFailed(ctx context.Context, ids []uuid.UUID, errMsg string) error
	// ListFailed returns failed items still under maxRetries.
	ListFailed(ctx context.Context, maxRetries int) ([]*entities.AnalysisQueueItem, error)
	// Requeue moves failed items back to pending.
	Requeue(ctx context.Context, ids []uuid.UUID) (int64, error)
	// ResetStale moves items stuck in processing since before cutoff back to pending.
	ResetStale(ctx context.Context, cutoff time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[entities.QueueStatus]int64, error)
	List(ctx context.Context, status entities.QueueStatus, limit int) ([]*entities.AnalysisQueueItem, error)
}

// TranscriptRepository persists transcript lines
type TranscriptRepository interface {
	SaveTranscript(ctx context.Context, t *entities.Transcript) error
	GetTranscriptByID(ctx context.Context, id uuid.UUID) (*entities.Transcript, error)
}
