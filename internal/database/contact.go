package database

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/models"
)

// GetContact возвращает активное ребро owner -> peer
func (d *Database) GetContact(ctx context.Context, ownerID, peerID uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := d.db.WithContext(ctx).
		First(&contact, "user_id = ? AND contact_id = ?", ownerID, peerID).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// ActivateContact создает ребро owner -> peer или восстанавливает удаленное
func (d *Database) ActivateContact(ctx context.Context, ownerID, peerID uuid.UUID) error {
	var contact models.Contact
	err := d.db.WithContext(ctx).Unscoped().
		First(&contact, "user_id = ? AND contact_id = ?", ownerID, peerID).Error
	if errors.Is(err, ErrNotFound) {
		return d.db.WithContext(ctx).Create(&models.Contact{UserID: ownerID, ContactID: peerID}).Error
	}
	if err != nil {
		return err
	}
	if !contact.DeletedAt.Valid {
		return nil
	}
	return d.db.WithContext(ctx).Unscoped().Model(&contact).Update("deleted_at", nil).Error
}

// ListContacts возвращает пользователей из контактов owner
func (d *Database) ListContacts(ctx context.Context, ownerID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := d.db.WithContext(ctx).
		Joins("JOIN contacts ON contacts.contact_id = users.id AND contacts.deleted_at IS NULL").
		Where("contacts.user_id = ?", ownerID).
		Order("users.first_name, users.last_name").
		Find(&users).Error
	return users, err
}

// SearchUsers ищет по вхождению в email, имя или телефон
func (d *Database) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	pattern := "%" + escapeLike(query) + "%"
	var users []models.User
	err := d.db.WithContext(ctx).
		Where("email LIKE ? ESCAPE '\\' OR first_name LIKE ? ESCAPE '\\' OR phone_number LIKE ? ESCAPE '\\'", pattern, pattern, pattern).
		Order("first_name, last_name").
		Limit(limit).
		Find(&users).Error
	return users, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
