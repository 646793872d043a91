package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ConversationStatusOpen   = "open"
	ConversationStatusClosed = "closed"
)

type Conversation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Subject       string    `gorm:"size:255;not null" json:"subject"`
	Status        string    `gorm:"size:20;not null;index" json:"status"` // open, closed
	LastMessageAt time.Time `json:"last_message_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// TableName overrides the table name
func (Conversation) TableName() string {
	return "conversations"
}

type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	SenderRole     string    `gorm:"size:20;not null" json:"sender_role"` // user, admin
	Content        string    `gorm:"type:text;not null" json:"content"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}

// TableName overrides the table name
func (Message) TableName() string {
	return "messages"
}
