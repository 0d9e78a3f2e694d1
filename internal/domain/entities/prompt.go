package entities

import (
	"time"

	"github.com/google/uuid"
)

// PromptScope selects where a prompt applies
type PromptScope string

const (
	PromptScopeGlobal PromptScope = "global"
	PromptScopeRoom   PromptScope = "room"
)

// PromptConfig is an admin-editable prompt fragment
type PromptConfig struct {
	ID         uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Scope      PromptScope `json:"scope" gorm:"type:varchar(20);not null;index"`
	RoomNumber *int        `json:"room_number,omitempty" gorm:"type:integer"`
	Name       string      `json:"name" gorm:"type:varchar(255);not null"`
	PromptText string      `json:"prompt_text" gorm:"type:text;not null"`
	IsActive   bool        `json:"is_active" gorm:"default:true;index"`
	CreatedAt  time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (PromptConfig) TableName() string {
	return "prompt_configs"
}

// ResolvedPrompts holds the active prompt text for one analysis. Either may be empty.
type ResolvedPrompts struct {
	Global string `json:"global"`
	Room   string `json:"room"`
}
