package analysis

import "time"

// IngestTranscriptResponse reports the stored line and its queue item
type IngestTranscriptResponse struct {
	TranscriptID string  `json:"transcript_id"`
	Queued       bool    `json:"queued"`
	QueueItemID  *string `json:"queue_item_id,omitempty"`
	Priority     *int    `json:"priority,omitempty"`
}

// SummaryResponse is one room summary row
type SummaryResponse struct {
	ID             string    `json:"id"`
	MeetingID      string    `json:"meeting_id"`
	RoomNumber     int       `json:"room_number"`
	RoomLabel      string    `json:"room_label"`
	Content        string    `json:"content"`
	SentimentScore float64   `json:"sentiment_score"`
	KeyTopics      []string  `json:"key_topics"`
	KeySpeakers    []string  `json:"key_speakers"`
	ActionItems    []string  `json:"action_items"`
	CreatedAt      time.Time `json:"created_at"`
}

// InsightResponse is one insight event
type InsightResponse struct {
	ID            string    `json:"id"`
	MeetingID     string    `json:"meeting_id,omitempty"`
	Type          string    `json:"type"`
	Severity      string    `json:"severity"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	InvolvedRooms []int     `json:"involved_rooms"`
	RelatedTopics []string  `json:"related_topics"`
	CrossRoom     bool      `json:"cross_room"`
	CreatedAt     time.Time `json:"created_at"`
}

// TopicResponse is one topic node
type TopicResponse struct {
	ID              string         `json:"id"`
	Label           string         `json:"label"`
	Description     string         `json:"description"`
	Category        string         `json:"category"`
	MentionCount    int            `json:"mention_count"`
	RoomMentions    map[string]int `json:"room_mentions"`
	ImportanceScore float64        `json:"importance_score"`
	FirstSeen       time.Time      `json:"first_seen"`
	LastSeen        time.Time      `json:"last_seen"`
}

// EdgeResponse is one topic edge
type EdgeResponse struct {
	ID               string    `json:"id"`
	SourceID         string    `json:"source_id"`
	TargetID         string    `json:"target_id"`
	RelationshipType string    `json:"relationship_type"`
	Weight           float64   `json:"weight"`
	RoomContext      []int     `json:"room_context"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// QueueItemResponse is one analysis queue row
type QueueItemResponse struct {
	ID           string    `json:"id"`
	TranscriptID string    `json:"transcript_id"`
	MeetingID    string    `json:"meeting_id"`
	RoomNumber   int       `json:"room_number"`
	Status       string    `json:"status"`
	Priority     int       `json:"priority"`
	RetryCount   int       `json:"retry_count"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// QueueStatsResponse counts queue items by status
type QueueStatsResponse struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	Total      int64 `json:"total"`
}

// PromptResponse is one prompt config
type PromptResponse struct {
	ID         string    `json:"id"`
	Scope      string    `json:"scope"`
	RoomNumber *int      `json:"room_number,omitempty"`
	Name       string    `json:"name"`
	PromptText string    `json:"prompt_text"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
