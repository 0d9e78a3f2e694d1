package entities

import "time"

// EventType names a live update pushed to dashboard subscribers
type EventType string

const (
	EventRoomSummary  EventType = "room_summary"
	EventInsight      EventType = "insight"
	EventTopicsUpdate EventType = "topics_updated"
	EventRunFinished  EventType = "run_finished"
)

// PipelineEvent is published after analysis output is committed
type PipelineEvent struct {
	Type       EventType   `json:"type"`
	RunID      string      `json:"run_id"`
	MeetingID  string      `json:"meeting_id,omitempty"`
	RoomNumber *int        `json:"room_number,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
	At         time.Time   `json:"at"`
}
