package entities

import (
	"time"

	"github.com/google/uuid"
)

// ReferenceChunk is a read-only slice of an uploaded reference document
type ReferenceChunk struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DocumentID uuid.UUID `json:"document_id" gorm:"type:uuid;index"`
	Title      string    `json:"title" gorm:"type:varchar(500)"`
	Content    string    `json:"content" gorm:"type:text"`
	ChunkIndex int       `json:"chunk_index" gorm:"type:integer;default:0"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ReferenceChunk) TableName() string {
	return "document_chunks"
}
