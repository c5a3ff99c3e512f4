package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageType имя события
type MessageType string

const (
	// Системные типы
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"

	// События клиента
	TypeJoinChat         MessageType = "joinChat"
	TypeJoinGroup        MessageType = "joinGroup"
	TypeSendMessage      MessageType = "sendMessage"
	TypeSendFile         MessageType = "sendFile"
	TypeSendGroupMessage MessageType = "sendGroupMessage"

	// События сервера
	TypeReceiveMessage      MessageType = "receiveMessage"
	TypeReceiveGroupMessage MessageType = "receiveGroupMessage"
	TypeErrorMessage        MessageType = "errorMessage"
	TypeRoomJoined          MessageType = "roomJoined"
	TypeRoomLeft            MessageType = "roomLeft"
	TypeMembershipChanged   MessageType = "membershipChanged"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// RoomPayload данные roomJoined и roomLeft
type RoomPayload struct {
	RoomID RoomID `json:"roomId"`
}

// MembershipPayload данные membershipChanged: новая роль и статус
// пользователя в группе
type MembershipPayload struct {
	GroupID uuid.UUID `json:"groupId"`
	Role    string    `json:"role"`
	Status  string    `json:"status"`
}

// ErrorPayload данные errorMessage
type ErrorPayload struct {
	Message string `json:"message"`
}

// Decode разбирает data события в v
func (m *Message) Decode(v interface{}) error {
	if len(m.Data) == 0 {
		return ErrInvalidMessage
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return ErrInvalidMessage
	}
	return nil
}

func encode(msgType MessageType, data interface{}) ([]byte, error) {
	msg := Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = raw
	}
	return json.Marshal(msg)
}
