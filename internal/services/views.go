package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/models"
)

type UserView struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"emailId"`
	PhoneNumber string    `json:"phoneNumber"`
}

func newUserView(u *models.User) UserView {
	return UserView{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
	}
}

type MemberView struct {
	UserView
	Role   models.Role `json:"role"`
	Online bool        `json:"online"`
}

type GroupView struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	CreatedBy uuid.UUID    `json:"createdBy"`
	CreatedAt time.Time    `json:"createdAt"`
	Members   []MemberView `json:"members,omitempty"`
}

func newGroupView(g *models.Group) GroupView {
	return GroupView{
		ID:        g.ID,
		Name:      g.Name,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
	}
}

type DirectMessageView struct {
	ID         uuid.UUID          `json:"id"`
	SenderID   uuid.UUID          `json:"senderId"`
	ReceiverID uuid.UUID          `json:"receiverId"`
	Content    string             `json:"content"`
	Type       models.MessageType `json:"type"`
	CreatedAt  time.Time          `json:"createdAt"`
}

func newDirectMessageView(m *models.DirectMessage) DirectMessageView {
	return DirectMessageView{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Type:       m.Type,
		CreatedAt:  m.CreatedAt,
	}
}

// GroupMessageView сообщение группы с именем отправителя
type GroupMessageView struct {
	ID         uuid.UUID          `json:"id"`
	SenderID   uuid.UUID          `json:"senderId"`
	SenderName string             `json:"senderName"`
	Content    string             `json:"content"`
	GroupID    uuid.UUID          `json:"groupId"`
	CreatedAt  time.Time          `json:"createdAt"`
	Type       models.MessageType `json:"type"`
}

func newGroupMessageView(m *models.GroupMessage, sender *models.User) GroupMessageView {
	return GroupMessageView{
		ID:         m.ID,
		SenderID:   m.SenderID,
		SenderName: sender.DisplayName(),
		Content:    m.Content,
		GroupID:    m.GroupID,
		CreatedAt:  m.CreatedAt,
		Type:       m.Type,
	}
}

type ContactSummary struct {
	Contact       UserView           `json:"contact"`
	LatestMessage *DirectMessageView `json:"latestMessage"`
}

// now время создания записей. Точность микросекунды, как в postgres.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
