package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/models"
)

func (d *Database) CreateUser(ctx context.Context, user *models.User) error {
	return d.db.WithContext(ctx).Create(user).Error
}

func (d *Database) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserTaken проверяет, заняты ли email или телефон
func (d *Database) UserTaken(ctx context.Context, email, phone string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR phone_number = ?", email, phone).
		Count(&count).Error
	return count > 0, err
}

func (d *Database) UpdateRefreshTokenHash(ctx context.Context, userID uuid.UUID, hash string) error {
	return d.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token_hash", hash).Error
}
