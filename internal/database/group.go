package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *Database) CreateGroup(ctx context.Context, group *models.Group) error {
	return d.db.WithContext(ctx).Create(group).Error
}

func (d *Database) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := d.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// LockGroup читает группу и блокирует ее строку до конца транзакции.
// Все изменения участников одной группы проходят через эту блокировку.
func (d *Database) LockGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	q := d.db.WithContext(ctx)
	if isPostgres(d.db) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var group models.Group
	if err := q.First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// FindGroupByName ищет группу создателя с таким именем
func (d *Database) FindGroupByName(ctx context.Context, creatorID uuid.UUID, name string) (*models.Group, error) {
	var group models.Group
	err := d.db.WithContext(ctx).
		First(&group, "created_by = ? AND name = ?", creatorID, name).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (d *Database) UpdateGroupName(ctx context.Context, id uuid.UUID, name string) error {
	return d.db.WithContext(ctx).Model(&models.Group{}).
		Where("id = ?", id).
		Update("name", name).Error
}

// DeleteGroupCascade физически удаляет сообщения, участников и саму группу.
// Вызывается внутри Atomic.
func (d *Database) DeleteGroupCascade(ctx context.Context, id uuid.UUID) error {
	// каждый Delete на новом запросе, иначе gorm копит условия первой модели
	if err := d.unscoped(ctx).Where("group_id = ?", id).Delete(&models.GroupMessage{}).Error; err != nil {
		return err
	}
	if err := d.unscoped(ctx).Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
		return err
	}
	return d.unscoped(ctx).Where("id = ?", id).Delete(&models.Group{}).Error
}

func (d *Database) unscoped(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).Unscoped()
}

// ListUserGroups группы, в которых пользователь сейчас активный участник
func (d *Database) ListUserGroups(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	var groups []models.Group
	err := d.db.WithContext(ctx).
		Joins(`JOIN group_members ON group_members.group_id = "groups".id`).
		Where("group_members.user_id = ? AND group_members.status = ?", userID, models.MemberActive).
		Order(`"groups".created_at`).
		Find(&groups).Error
	return groups, err
}
