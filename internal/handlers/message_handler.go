package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/thereayou/groupchat/internal/handlers/dto"
	"github.com/thereayou/groupchat/internal/models"
	"github.com/thereayou/groupchat/internal/services"
	"github.com/thereayou/groupchat/internal/websocket"
	"github.com/thereayou/groupchat/pkg/storage"
)

const eventTimeout = 10 * time.Second

var (
	errSenderMismatch = errors.New("senderId does not match the authenticated user")
	errNotParticipant = errors.New("you are not a participant of this chat")
)

// memberGate проверка членства перед подпиской на комнату группы
type memberGate interface {
	RequireActiveMember(ctx context.Context, groupID, userID uuid.UUID) error
}

// MessageHandler разбирает события websocket, сохраняет сообщения и
// рассылает их по комнатам
type MessageHandler struct {
	hub        *websocket.Hub
	messages   *services.MessageService
	membership memberGate
}

func NewMessageHandler(hub *websocket.Hub, messages *services.MessageService, membership *services.MembershipService) *MessageHandler {
	return &MessageHandler{
		hub:        hub,
		messages:   messages,
		membership: membership,
	}
}

func (h *MessageHandler) HandleMessage(client *websocket.Client, msg *websocket.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch msg.Type {
	case websocket.TypeJoinChat:
		return h.handleJoinChat(client, msg)
	case websocket.TypeJoinGroup:
		return h.handleJoinGroup(ctx, client, msg)
	case websocket.TypeSendMessage:
		return h.handleSendMessage(ctx, client, msg)
	case websocket.TypeSendFile:
		return h.handleSendFile(ctx, client, msg)
	case websocket.TypeSendGroupMessage:
		return h.handleSendGroupMessage(ctx, client, msg)
	default:
		return websocket.ErrUnknownEvent
	}
}

func (h *MessageHandler) handleJoinChat(client *websocket.Client, msg *websocket.Message) error {
	var payload dto.JoinChatPayload
	if err := msg.Decode(&payload); err != nil {
		return err
	}
	if payload.SenderID == uuid.Nil || payload.ReceiverID == uuid.Nil {
		return websocket.ErrInvalidMessage
	}
	if client.UserID != payload.SenderID && client.UserID != payload.ReceiverID {
		return errNotParticipant
	}

	return h.join(client, websocket.DirectRoomID(payload.SenderID, payload.ReceiverID))
}

// handleJoinGroup подписывает только активных участников группы
func (h *MessageHandler) handleJoinGroup(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	var payload dto.JoinGroupPayload
	if err := msg.Decode(&payload); err != nil {
		return err
	}
	if payload.GroupID == uuid.Nil {
		return websocket.ErrInvalidMessage
	}
	if err := h.membership.RequireActiveMember(ctx, payload.GroupID, client.UserID); err != nil {
		return err
	}

	roomID := websocket.GroupRoomID(payload.GroupID)
	if err := h.hub.Join(client, roomID); err != nil {
		return err
	}
	// удаление могло завершиться между проверкой и Join, тогда его
	// EvictFromGroup не увидел это соединение
	if err := h.membership.RequireActiveMember(ctx, payload.GroupID, client.UserID); err != nil {
		h.hub.Leave(client, roomID)
		return err
	}
	return client.SendMessage(websocket.TypeRoomJoined, websocket.RoomPayload{RoomID: roomID})
}

func (h *MessageHandler) handleSendMessage(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	var payload dto.SendMessagePayload
	if err := msg.Decode(&payload); err != nil {
		return err
	}
	if err := checkSender(client, payload.SenderID); err != nil {
		return err
	}

	return h.sendDirect(ctx, payload.SenderID, payload.ReceiverID, payload.Content, models.MessageText)
}

// handleSendFile отправляет ключ загруженного файла как медиа сообщение
func (h *MessageHandler) handleSendFile(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	var payload dto.SendFilePayload
	if err := msg.Decode(&payload); err != nil {
		return err
	}
	if err := checkSender(client, payload.SenderID); err != nil {
		return err
	}

	switch payload.ChatType {
	case storage.ChatIndividual:
		return h.sendDirect(ctx, payload.SenderID, payload.ReceiverID, payload.FileURL, models.MessageMedia)
	case storage.ChatGroup:
		return h.sendGroup(ctx, payload.SenderID, payload.GroupID, payload.FileURL, models.MessageMedia)
	default:
		return storage.ErrUnknownChatType
	}
}

func (h *MessageHandler) handleSendGroupMessage(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	var payload dto.SendGroupMessagePayload
	if err := msg.Decode(&payload); err != nil {
		return err
	}
	if err := checkSender(client, payload.SenderID); err != nil {
		return err
	}

	return h.sendGroup(ctx, payload.SenderID, payload.GroupID, payload.Message, models.MessageText)
}

func (h *MessageHandler) join(client *websocket.Client, roomID websocket.RoomID) error {
	if err := h.hub.Join(client, roomID); err != nil {
		return err
	}
	return client.SendMessage(websocket.TypeRoomJoined, websocket.RoomPayload{RoomID: roomID})
}

// sendDirect сохраняет сообщение до рассылки. Получатель не в сети
// увидит его в истории.
func (h *MessageHandler) sendDirect(ctx context.Context, senderID, receiverID uuid.UUID, content string, msgType models.MessageType) error {
	view, err := h.messages.SendDirect(ctx, senderID, receiverID, content, msgType)
	if err != nil {
		return err
	}

	roomID := websocket.DirectRoomID(senderID, receiverID)
	if _, err := h.hub.Broadcast(roomID, websocket.TypeReceiveMessage, view); err != nil {
		log.Warn().Err(err).Str("room_id", string(roomID)).Str("message_id", view.ID.String()).Msg("message saved but not broadcast")
	}
	return nil
}

func (h *MessageHandler) sendGroup(ctx context.Context, senderID, groupID uuid.UUID, content string, msgType models.MessageType) error {
	view, err := h.messages.SendGroup(ctx, senderID, groupID, content, msgType)
	if err != nil {
		return err
	}

	roomID := websocket.GroupRoomID(groupID)
	if _, err := h.hub.Broadcast(roomID, websocket.TypeReceiveGroupMessage, view); err != nil {
		log.Warn().Err(err).Str("room_id", string(roomID)).Str("message_id", view.ID.String()).Msg("message saved but not broadcast")
	}
	return nil
}

func checkSender(client *websocket.Client, senderID uuid.UUID) error {
	if senderID == uuid.Nil {
		return websocket.ErrInvalidMessage
	}
	if senderID != client.UserID {
		return errSenderMismatch
	}
	return nil
}
