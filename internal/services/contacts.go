package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/database"
)

// searchLimit верхняя граница выдачи поиска пользователей
const searchLimit = 50

type ContactService struct {
	db *database.Database
}

func NewContactService(db *database.Database) *ContactService {
	return &ContactService{db: db}
}

// AddContact связывает двух пользователей. Обе строки пары создаются
// в одной транзакции.
func (s *ContactService) AddContact(ctx context.Context, ownerID, peerID uuid.UUID) (UserView, error) {
	if ownerID == uuid.Nil || peerID == uuid.Nil {
		return UserView{}, invalidInput("contactId is required")
	}
	if ownerID == peerID {
		return UserView{}, invalidInput("cannot add yourself as a contact")
	}

	var peerView UserView
	err := s.db.Atomic(ctx, func(tx *database.Database) error {
		peer, err := tx.GetUser(ctx, peerID)
		if err != nil {
			return lookupErr(err, "user")
		}
		peerView = newUserView(peer)

		_, err = tx.GetContact(ctx, ownerID, peerID)
		if err == nil {
			return alreadyExists("contact is already added")
		}
		if !errors.Is(err, database.ErrNotFound) {
			return internal("failed to load contact", err)
		}

		if err := tx.ActivateContact(ctx, ownerID, peerID); err != nil {
			return err
		}
		return tx.ActivateContact(ctx, peerID, ownerID)
	})
	// встречное добавление успело вставить ту же пару
	if errors.Is(err, database.ErrDuplicate) {
		return UserView{}, alreadyExists("contact is already added")
	}
	if err != nil {
		return UserView{}, storeErr(err, "failed to add contact")
	}
	return peerView, nil
}

// GetContact данные одного контакта владельца
func (s *ContactService) GetContact(ctx context.Context, ownerID, contactID uuid.UUID) (UserView, error) {
	if contactID == uuid.Nil {
		return UserView{}, invalidInput("contactId is required")
	}
	ok, err := areContacts(ctx, s.db, ownerID, contactID)
	if err != nil {
		return UserView{}, err
	}
	if !ok {
		return UserView{}, notFound("contact not found")
	}
	user, err := s.db.GetUser(ctx, contactID)
	if err != nil {
		return UserView{}, lookupErr(err, "contact")
	}
	return newUserView(user), nil
}

// Search ищет пользователей по email, имени или телефону, не считая
// самого вызывающего
func (s *ContactService) Search(ctx context.Context, callerID uuid.UUID, query string) ([]UserView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidInput("search value cannot be empty")
	}
	users, err := s.db.SearchUsers(ctx, query, searchLimit+1)
	if err != nil {
		return nil, internal("failed to search users", err)
	}
	views := make([]UserView, 0, len(users))
	for i := range users {
		if users[i].ID == callerID || len(views) == searchLimit {
			continue
		}
		views = append(views, newUserView(&users[i]))
	}
	return views, nil
}

func (s *ContactService) ListContacts(ctx context.Context, ownerID uuid.UUID) ([]UserView, error) {
	users, err := s.db.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, internal("failed to load contacts", err)
	}
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	return views, nil
}

// LatestPerContact последнее сообщение с каждым контактом
func (s *ContactService) LatestPerContact(ctx context.Context, ownerID uuid.UUID) ([]ContactSummary, error) {
	users, err := s.db.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, internal("failed to load contacts", err)
	}

	summaries := make([]ContactSummary, 0, len(users))
	for i := range users {
		summary := ContactSummary{Contact: newUserView(&users[i])}
		msg, err := s.db.LatestDirectMessage(ctx, ownerID, users[i].ID)
		switch {
		case err == nil:
			view := newDirectMessageView(msg)
			summary.LatestMessage = &view
		case !errors.Is(err, database.ErrNotFound):
			return nil, internal("failed to load latest message", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func areContacts(ctx context.Context, db *database.Database, ownerID, peerID uuid.UUID) (bool, error) {
	_, err := db.GetContact(ctx, ownerID, peerID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, database.ErrNotFound):
		return false, nil
	default:
		return false, internal("failed to load contact", err)
	}
}
