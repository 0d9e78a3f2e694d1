package entities

import (
	"time"

	"github.com/google/uuid"
)

// QueueStatus represents the lifecycle state of an analysis queue item
type QueueStatus string

const (
	QueueStatusPending    QueueStatus = "pending"    // Waiting for the next processor run
	QueueStatusProcessing QueueStatus = "processing" // Claimed by a processor run
	QueueStatusCompleted  QueueStatus = "completed"  // Analysis persisted
	QueueStatusFailed     QueueStatus = "failed"     // LLM or storage failure, needs an operator
)

const (
	MainRoomNumber = 0
	MaxRoomNumber  = 8

	PriorityMainRoom = 10
	PriorityBreakout = 5
)

// PriorityForRoom returns the queue sort key for a room. Main room work sorts first.
func PriorityForRoom(roomNumber int) int {
	if roomNumber == MainRoomNumber {
		return PriorityMainRoom
	}
	return PriorityBreakout
}

// ValidRoomNumber reports whether n is the main room or one of the breakout rooms
func ValidRoomNumber(n int) bool {
	return n >= MainRoomNumber && n <= MaxRoomNumber
}

// AnalysisQueueItem is one unit of pending analysis work for a finalized transcript.
// Rows are never deleted.
type AnalysisQueueItem struct {
	ID           uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TranscriptID uuid.UUID   `json:"transcript_id" gorm:"type:uuid;not null;uniqueIndex"`
	MeetingID    string      `json:"meeting_id" gorm:"type:varchar(255);not null;index"`
	RoomNumber   int         `json:"room_number" gorm:"type:integer;not null"`
	Status       QueueStatus `json:"status" gorm:"type:varchar(20);not null;index;default:'pending'"`
	Priority     int         `json:"priority" gorm:"type:integer;not null;default:5"`
	RetryCount   int         `json:"retry_count" gorm:"type:integer;default:0"`
	ErrorMessage *string     `json:"error_message,omitempty" gorm:"type:text"`

	Transcript *Transcript `json:"transcript,omitempty" gorm:"foreignKey:TranscriptID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewAnalysisQueueItem creates a pending queue item for a finalized transcript
func NewAnalysisQueueItem(t *Transcript) *AnalysisQueueItem {
	now := time.Now()
	return &AnalysisQueueItem{
		ID:           uuid.New(),
		TranscriptID: t.ID,
		MeetingID:    t.MeetingID,
		RoomNumber:   t.RoomNumber,
		Status:       QueueStatusPending,
		Priority:     PriorityForRoom(t.RoomNumber),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsTerminal reports whether no automatic transition leaves the current status
func (q *AnalysisQueueItem) IsTerminal() bool {
	return q.Status == QueueStatusCompleted || q.Status == QueueStatusFailed
}

// CanRequeue checks if a failed item is still within its retry budget
func (q *AnalysisQueueItem) CanRequeue(maxRetries int) bool {
	return q.Status == QueueStatusFailed && q.RetryCount < maxRetries
}

// TableName specifies the table name for GORM
func (AnalysisQueueItem) TableName() string {
	return "analysis_queue"
}
