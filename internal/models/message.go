package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageMedia MessageType = "media"
)

func (t MessageType) Valid() bool {
	return t == MessageText || t == MessageMedia
}

// DirectMessage личное сообщение, таблица messages
type DirectMessage struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	SenderID   uuid.UUID   `gorm:"type:uuid;not null;index:idx_direct_pair"`
	ReceiverID uuid.UUID   `gorm:"type:uuid;not null;index:idx_direct_pair"`
	Content    string      `gorm:"not null"`
	Type       MessageType `gorm:"type:varchar(16);not null;default:'text'"`
	CreatedAt  time.Time   `gorm:"index"`
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (DirectMessage) TableName() string { return "messages" }

func (m *DirectMessage) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type GroupMessage struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"`
	GroupID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	SenderID  uuid.UUID   `gorm:"type:uuid;not null"`
	Content   string      `gorm:"not null"`
	Type      MessageType `gorm:"type:varchar(16);not null;default:'text'"`
	CreatedAt time.Time   `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// Связи
	Sender User `gorm:"foreignKey:SenderID"`
}

func (m *GroupMessage) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
