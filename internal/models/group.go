package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type MemberStatus string

const (
	MemberActive  MemberStatus = "active"
	MemberRemoved MemberStatus = "removed"
)

type Group struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null;uniqueIndex:idx_group_creator_name"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_creator_name"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (g *Group) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// GroupMember одна строка на пару (group, user). Удаленный участник остается
// в таблице со статусом removed и последней известной ролью.
type GroupMember struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey"`
	GroupID   uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_group_member"`
	UserID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_group_member"`
	Role      Role         `gorm:"type:varchar(16);not null;default:'member'"`
	Status    MemberStatus `gorm:"type:varchar(16);not null;default:'active';index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time

	// Связи
	User User `gorm:"foreignKey:UserID"`
}

func (m *GroupMember) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *GroupMember) IsActive() bool {
	return m.Status == MemberActive
}

func (m *GroupMember) IsAdmin() bool {
	return m.IsActive() && m.Role == RoleAdmin
}

// Remove переводит участника в removed, роль запоминается
func (m *GroupMember) Remove(at time.Time) {
	m.Status = MemberRemoved
	m.DeletedAt = &at
}

// Restore возвращает участника с прежней ролью
func (m *GroupMember) Restore() {
	m.Status = MemberActive
	m.DeletedAt = nil
}
