package ingest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	ucerrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
)

// TranscriptInput is one transcript line from the meeting stream
type TranscriptInput struct {
	MeetingID   string
	RoomNumber  int
	SpeakerName string
	Content     string
	IsFinal     bool
}

// Result reports what ingestion stored
type Result struct {
	Transcript *entities.Transcript
	QueueItem  *entities.AnalysisQueueItem
	Queued     bool
}

// Service stores transcript lines and queues finalized ones for analysis
type Service struct {
	transcriptRepo repositories.TranscriptRepository
	queueRepo      repositories.QueueRepository
	logger         *zap.Logger
}

func NewService(transcriptRepo repositories.TranscriptRepository, queueRepo repositories.QueueRepository, logger *zap.Logger) *Service {
	return &Service{transcriptRepo: transcriptRepo, queueRepo: queueRepo, logger: logger}
}

// IngestTranscript saves the line and, when final, creates its single queue item
// with priority 10 for the main room and 5 for breakout rooms
func (s *Service) IngestTranscript(ctx context.Context, in TranscriptInput) (*Result, error) {
	if strings.TrimSpace(in.MeetingID) == "" {
		return nil, fmt.Errorf("%w: meeting_id is required", ucerrors.ErrInvalidInput)
	}
	if !entities.ValidRoomNumber(in.RoomNumber) {
		return nil, ucerrors.ErrRoomOutOfRange
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ucerrors.ErrInvalidInput)
	}

	t := entities.NewTranscript(in.MeetingID, in.RoomNumber, in.SpeakerName, in.Content, in.IsFinal)
	if err := s.transcriptRepo.SaveTranscript(ctx, t); err != nil {
		return nil, fmt.Errorf("save transcript: %w", err)
	}

	res := &Result{Transcript: t}
	if !t.IsFinal {
		return res, nil
	}

	item := entities.NewAnalysisQueueItem(t)
	created, err := s.queueRepo.Enqueue(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("enqueue transcript: %w", err)
	}
	if created {
		res.QueueItem = item
		res.Queued = true
	}

	if s.logger != nil {
		s.logger.Debug("Transcript queued for analysis",
			zap.String("meeting_id", t.MeetingID),
			zap.Int("room_number", t.RoomNumber),
			zap.Int("priority", item.Priority),
			zap.Bool("created", created),
		)
	}
	return res, nil
}
