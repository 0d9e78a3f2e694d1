package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const SummaryTypeRoom = "room"

// AnalysisSummary is an append-only snapshot of one room analysis.
// Readers take the most recent row per room.
type AnalysisSummary struct {
	ID             uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID      string                      `json:"meeting_id" gorm:"type:varchar(255);not null;index"`
	RoomNumber     int                         `json:"room_number" gorm:"type:integer;not null;index"`
	SummaryType    string                      `json:"summary_type" gorm:"type:varchar(50);not null;default:'room'"`
	Content        string                      `json:"content" gorm:"type:text"`
	SentimentScore float64                     `json:"sentiment_score" gorm:"type:double precision;default:0"`
	KeyTopics      datatypes.JSONSlice[string] `json:"key_topics" gorm:"type:jsonb"`
	KeySpeakers    datatypes.JSONSlice[string] `json:"key_speakers" gorm:"type:jsonb"`
	ActionItems    datatypes.JSONSlice[string] `json:"action_items" gorm:"type:jsonb"`
	CreatedAt      time.Time                   `json:"created_at" gorm:"index"`
}

// NewRoomSummary projects a room analysis into a persisted summary row
func NewRoomSummary(meetingID string, roomNumber int, r *RoomAnalysisResult, now time.Time) *AnalysisSummary {
	return &AnalysisSummary{
		ID:             uuid.New(),
		MeetingID:      meetingID,
		RoomNumber:     roomNumber,
		SummaryType:    SummaryTypeRoom,
		Content:        r.Summary,
		SentimentScore: float64(r.Sentiment),
		KeyTopics:      datatypes.NewJSONSlice(r.TopicLabels()),
		KeySpeakers:    datatypes.NewJSONSlice(nonNil(r.Speakers)),
		ActionItems:    datatypes.NewJSONSlice(nonNil(r.ActionItems)),
		CreatedAt:      now,
	}
}

// TableName specifies the table name for GORM
func (AnalysisSummary) TableName() string {
	return "analysis_summaries"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
