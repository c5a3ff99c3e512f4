package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/models"
)

func (d *Database) CreateDirectMessage(ctx context.Context, msg *models.DirectMessage) error {
	return d.db.WithContext(ctx).Create(msg).Error
}

func (d *Database) CreateGroupMessage(ctx context.Context, msg *models.GroupMessage) error {
	return d.db.WithContext(ctx).Create(msg).Error
}

// ListDirectMessages переписка двух пользователей, старые сообщения первыми
func (d *Database) ListDirectMessages(ctx context.Context, userA, userB uuid.UUID) ([]models.DirectMessage, error) {
	var messages []models.DirectMessage
	err := d.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (d *Database) LatestDirectMessage(ctx context.Context, userA, userB uuid.UUID) (*models.DirectMessage, error) {
	var msg models.DirectMessage
	err := d.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (d *Database) ListGroupMessages(ctx context.Context, groupID uuid.UUID) ([]models.GroupMessage, error) {
	var messages []models.GroupMessage
	err := d.db.WithContext(ctx).
		Preload("Sender").
		Where("group_id = ?", groupID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}
