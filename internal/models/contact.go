package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact направленное ребро owner -> peer. Создается всегда парой.
type Contact struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contact_pair"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contact_pair"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// Связи
	Contact User `gorm:"foreignKey:ContactID"`
}

func (c *Contact) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
