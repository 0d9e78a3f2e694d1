package entities

// TopicMention is a topic reported by one room analysis
type TopicMention struct {
	Label       string `json:"label"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// RelationshipMention links two topic labels
type RelationshipMention struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// InsightMention is a room-scoped insight reported by the model
type InsightMention struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// RoomAnalysisResult is the structured output of one room analysis.
// It is projected into persisted entities and then discarded.
type RoomAnalysisResult struct {
	Summary       string                `json:"summary"`
	Sentiment     Sentiment             `json:"sentiment"`
	Topics        []TopicMention        `json:"topics"`
	Relationships []RelationshipMention `json:"relationships"`
	Insights      []InsightMention      `json:"insights"`
	ActionItems   []string              `json:"actionItems"`
	Speakers      []string              `json:"speakers"`

	// Raw is the unparsed model output, kept for archival.
	Raw string `json:"-"`
	// Degraded is set when the model output could not be decoded.
	Degraded bool `json:"-"`
}

// TopicLabels returns the reported topic labels in order
func (r *RoomAnalysisResult) TopicLabels() []string {
	labels := make([]string, 0, len(r.Topics))
	for _, t := range r.Topics {
		labels = append(labels, t.Label)
	}
	return labels
}

// CrossRoomInsight is an insight spanning several rooms
type CrossRoomInsight struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Rooms       []int  `json:"rooms"`
}

// RoomSummaryInput is one room's latest summary handed to the cross-room synthesizer
type RoomSummaryInput struct {
	RoomNumber int      `json:"roomNumber"`
	Summary    string   `json:"summary"`
	Topics     []string `json:"topics"`
}
