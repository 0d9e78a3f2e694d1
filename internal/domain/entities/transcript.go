package entities

import (
	"time"

	"github.com/google/uuid"
)

// Transcript is one transcript line received from the meeting stream
type Transcript struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID   string    `json:"meeting_id" gorm:"type:varchar(255);not null;index"`
	RoomNumber  int       `json:"room_number" gorm:"type:integer;not null;default:0"`
	SpeakerName string    `json:"speaker_name" gorm:"type:varchar(255)"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	IsFinal     bool      `json:"is_final" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Transcript) TableName() string {
	return "transcripts"
}

// NewTranscript creates a new transcript line
func NewTranscript(meetingID string, roomNumber int, speaker, content string, isFinal bool) *Transcript {
	return &Transcript{
		ID:          uuid.New(),
		MeetingID:   meetingID,
		RoomNumber:  roomNumber,
		SpeakerName: speaker,
		Content:     content,
		IsFinal:     isFinal,
		CreatedAt:   time.Now(),
	}
}
