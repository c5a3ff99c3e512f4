package dto

import "github.com/google/uuid"

// Данные входящих websocket событий

type JoinChatPayload struct {
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
}

type JoinGroupPayload struct {
	GroupID uuid.UUID `json:"groupId"`
}

type SendMessagePayload struct {
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	Content    string    `json:"content"`
}

// SendFilePayload fileUrl это ключ объекта из /uploads/presign
type SendFilePayload struct {
	FileURL    string    `json:"fileUrl"`
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	ChatType   string    `json:"chatType"`
	GroupID    uuid.UUID `json:"groupId"`
}

type SendGroupMessagePayload struct {
	SenderID uuid.UUID `json:"senderId"`
	GroupID  uuid.UUID `json:"groupId"`
	Message  string    `json:"message"`
}
