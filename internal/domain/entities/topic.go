package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RelationshipType classifies a TopicEdge
type RelationshipType string

const (
	RelationshipRelatedTo     RelationshipType = "related_to"
	RelationshipDependsOn     RelationshipType = "depends_on"
	RelationshipConflictsWith RelationshipType = "conflicts_with"
	RelationshipSupports      RelationshipType = "supports"
)

// NormalizeRelationshipType maps unknown or empty types to related_to
func NormalizeRelationshipType(s string) RelationshipType {
	switch t := RelationshipType(s); t {
	case RelationshipRelatedTo, RelationshipDependsOn, RelationshipConflictsWith, RelationshipSupports:
		return t
	default:
		return RelationshipRelatedTo
	}
}

// TopicNode is a discussion topic deduplicated by exact label
type TopicNode struct {
	ID              uuid.UUID                       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Label           string                          `json:"label" gorm:"type:varchar(500);not null;uniqueIndex"`
	Description     string                          `json:"description" gorm:"type:text"`
	Category        string                          `json:"category" gorm:"type:varchar(100)"`
	MentionCount    int                             `json:"mention_count" gorm:"type:integer;not null;default:0"`
	RoomMentions    datatypes.JSONType[map[int]int] `json:"room_mentions" gorm:"type:jsonb"`
	ImportanceScore float64                         `json:"importance_score" gorm:"type:double precision;default:0"`
	FirstSeen       time.Time                       `json:"first_seen"`
	LastSeen        time.Time                       `json:"last_seen"`
}

// NewTopicNode creates a node for the first mention of a label in a room
func NewTopicNode(label, description, category string, roomNumber int, now time.Time) *TopicNode {
	n := &TopicNode{
		ID:           uuid.New(),
		Label:        label,
		Description:  description,
		Category:     category,
		MentionCount: 1,
		RoomMentions: datatypes.NewJSONType(map[int]int{roomNumber: 1}),
		FirstSeen:    now,
		LastSeen:     now,
	}
	n.ImportanceScore = n.computeImportance()
	return n
}

// RecordMention counts another mention of this topic in a room.
// Empty description and category are filled in from the new mention.
func (n *TopicNode) RecordMention(roomNumber int, description, category string, now time.Time) {
	mentions := make(map[int]int)
	for room, count := range n.RoomMentions.Data() {
		mentions[room] = count
	}
	mentions[roomNumber]++

	n.MentionCount++
	n.RoomMentions = datatypes.NewJSONType(mentions)
	n.ImportanceScore = n.computeImportance()
	n.LastSeen = now
	if n.Description == "" {
		n.Description = description
	}
	if n.Category == "" {
		n.Category = category
	}
}

// DistinctRooms returns how many rooms have mentioned this topic
func (n *TopicNode) DistinctRooms() int {
	return len(n.RoomMentions.Data())
}

// importance = mention_count + 2 × distinct rooms
func (n *TopicNode) computeImportance() float64 {
	return float64(n.MentionCount + 2*n.DistinctRooms())
}

// TableName specifies the table name for GORM
func (TopicNode) TableName() string {
	return "topic_nodes"
}

// TopicEdge links two topics. The (source, target) pair is unique; a repeat overwrites.
type TopicEdge struct {
	ID               uuid.UUID                `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SourceID         uuid.UUID                `json:"source_id" gorm:"type:uuid;not null;uniqueIndex:idx_topic_edges_pair"`
	TargetID         uuid.UUID                `json:"target_id" gorm:"type:uuid;not null;uniqueIndex:idx_topic_edges_pair"`
	RelationshipType RelationshipType         `json:"relationship_type" gorm:"type:varchar(50);not null;default:'related_to'"`
	Weight           float64                  `json:"weight" gorm:"type:double precision;default:1"`
	RoomContext      datatypes.JSONSlice[int] `json:"room_context" gorm:"type:jsonb"`
	CreatedAt        time.Time                `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time                `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewTopicEdge creates an edge produced by an analysis of one room
func NewTopicEdge(sourceID, targetID uuid.UUID, relType string, roomNumber int) *TopicEdge {
	return &TopicEdge{
		ID:               uuid.New(),
		SourceID:         sourceID,
		TargetID:         targetID,
		RelationshipType: NormalizeRelationshipType(relType),
		Weight:           1.0,
		RoomContext:      datatypes.NewJSONSlice([]int{roomNumber}),
	}
}

// TableName specifies the table name for GORM
func (TopicEdge) TableName() string {
	return "topic_edges"
}

// TopicLink is an edge described by its endpoint labels, used for graph projection
type TopicLink struct {
	Source string           `json:"source"`
	Target string           `json:"target"`
	Type   RelationshipType `json:"type"`
	Weight float64          `json:"weight"`
	Rooms  []int            `json:"rooms"`
}
