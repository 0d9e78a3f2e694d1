package analysis

// IngestTranscriptRequest is one transcript line pushed by the meeting stream bridge
type IngestTranscriptRequest struct {
	MeetingID   string `json:"meeting_id" validate:"required,max=255"`
	RoomNumber  *int   `json:"room_number" validate:"required,min=0,max=8"`
	SpeakerName string `json:"speaker_name" validate:"max=255"`
	Content     string `json:"content" validate:"required"`
	IsFinal     bool   `json:"is_final"`
}

// RequeueRequest asks for failed items to be re-enqueued
type RequeueRequest struct {
	Force bool `json:"force"`
}

// ListQuery filters dashboard reads
type ListQuery struct {
	MeetingID string `query:"meeting_id" validate:"max=255"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=500"`
}

// QueueItemsQuery filters queue item listing
type QueueItemsQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=pending processing completed failed"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=500"`
}

// SavePromptRequest creates or updates a prompt config
type SavePromptRequest struct {
	Scope      string `json:"scope" validate:"required,oneof=global room"`
	RoomNumber *int   `json:"room_number,omitempty" validate:"omitempty,min=0,max=8"`
	Name       string `json:"name" validate:"required,max=255"`
	PromptText string `json:"prompt_text" validate:"required"`
	IsActive   *bool  `json:"is_active,omitempty"`
}

// Active defaults to true when the field is omitted
func (r *SavePromptRequest) Active() bool {
	return r.IsActive == nil || *r.IsActive
}
