package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/models"
)

// GetMember возвращает строку участника в любом статусе
func (d *Database) GetMember(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error) {
	var member models.GroupMember
	err := d.db.WithContext(ctx).
		First(&member, "group_id = ? AND user_id = ?", groupID, userID).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (d *Database) CreateMember(ctx context.Context, member *models.GroupMember) error {
	return d.db.WithContext(ctx).Create(member).Error
}

func (d *Database) SaveMember(ctx context.Context, member *models.GroupMember) error {
	return d.db.WithContext(ctx).
		Model(member).
		Select("role", "status", "deleted_at", "updated_at").
		Updates(member).Error
}

func (d *Database) CountActiveAdmins(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND status = ? AND role = ?", groupID, models.MemberActive, models.RoleAdmin).
		Count(&count).Error
	return count, err
}

func (d *Database) ListActiveMembers(ctx context.Context, groupID uuid.UUID) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := d.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ? AND status = ?", groupID, models.MemberActive).
		Order("created_at").
		Find(&members).Error
	return members, err
}
