package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// InsightType classifies an insight event
type InsightType string

const (
	InsightAlignment    InsightType = "alignment"
	InsightMisalignment InsightType = "misalignment"
	InsightGap          InsightType = "gap"
	InsightHighlight    InsightType = "highlight"
	InsightAction       InsightType = "action"
)

// Severity of an insight event
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityAlert   Severity = "alert"
)

// NormalizeSeverity maps unknown or empty severities to info
func NormalizeSeverity(s string) Severity {
	switch v := Severity(s); v {
	case SeverityInfo, SeverityWarning, SeverityAlert:
		return v
	default:
		return SeverityInfo
	}
}

// InsightEvent is an append-only derived observation. Repeats across runs accumulate.
type InsightEvent struct {
	ID            uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID     string                      `json:"meeting_id,omitempty" gorm:"type:varchar(255);index"`
	Type          InsightType                 `json:"type" gorm:"type:varchar(50);not null"`
	Severity      Severity                    `json:"severity" gorm:"type:varchar(20);not null;default:'info'"`
	Title         string                      `json:"title" gorm:"type:varchar(500)"`
	Description   string                      `json:"description" gorm:"type:text"`
	InvolvedRooms datatypes.JSONSlice[int]    `json:"involved_rooms" gorm:"type:jsonb"`
	RelatedTopics datatypes.JSONSlice[string] `json:"related_topics" gorm:"type:jsonb"`
	CreatedAt     time.Time                   `json:"created_at" gorm:"index"`
}

// NormalizeInsightType maps unknown or empty types to fallback
func NormalizeInsightType(s string, fallback InsightType) InsightType {
	switch t := InsightType(s); t {
	case InsightAlignment, InsightMisalignment, InsightGap, InsightHighlight, InsightAction:
		return t
	default:
		return fallback
	}
}

// NewRoomInsight tags an analyzer insight with the single room that produced it
func NewRoomInsight(meetingID string, roomNumber int, m InsightMention, topics []string, now time.Time) *InsightEvent {
	return &InsightEvent{
		ID:            uuid.New(),
		MeetingID:     meetingID,
		Type:          NormalizeInsightType(m.Type, InsightHighlight),
		Severity:      NormalizeSeverity(m.Severity),
		Title:         m.Title,
		Description:   m.Description,
		InvolvedRooms: datatypes.NewJSONSlice([]int{roomNumber}),
		RelatedTopics: datatypes.NewJSONSlice(nonNil(topics)),
		CreatedAt:     now,
	}
}

// NewCrossRoomInsight keeps the room list reported by the synthesizer
func NewCrossRoomInsight(meetingID string, ci CrossRoomInsight, now time.Time) *InsightEvent {
	rooms := ci.Rooms
	if rooms == nil {
		rooms = []int{}
	}
	return &InsightEvent{
		ID:            uuid.New(),
		MeetingID:     meetingID,
		Type:          NormalizeInsightType(ci.Type, InsightGap),
		Severity:      NormalizeSeverity(ci.Severity),
		Title:         ci.Title,
		Description:   ci.Description,
		InvolvedRooms: datatypes.NewJSONSlice(rooms),
		RelatedTopics: datatypes.NewJSONSlice([]string{}),
		CreatedAt:     now,
	}
}

// TableName specifies the table name for GORM
func (InsightEvent) TableName() string {
	return "insight_events"
}
