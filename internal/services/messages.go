package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/database"
	"github.com/thereayou/groupchat/internal/models"
)

// MessageService сохраняет и читает сообщения. Рассылкой занимается
// обработчик событий websocket.
type MessageService struct {
	db *database.Database
}

func NewMessageService(db *database.Database) *MessageService {
	return &MessageService{db: db}
}

func (s *MessageService) SendDirect(ctx context.Context, senderID, receiverID uuid.UUID, content string, msgType models.MessageType) (DirectMessageView, error) {
	if senderID == uuid.Nil || receiverID == uuid.Nil || strings.TrimSpace(content) == "" {
		return DirectMessageView{}, invalidInput("senderId, receiverId and content are required")
	}
	if !msgType.Valid() {
		return DirectMessageView{}, invalidInput("unsupported message type")
	}
	if _, err := s.db.GetUser(ctx, senderID); err != nil {
		return DirectMessageView{}, lookupErr(err, "sender")
	}
	if _, err := s.db.GetUser(ctx, receiverID); err != nil {
		return DirectMessageView{}, lookupErr(err, "receiver")
	}

	msg := &models.DirectMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Type:       msgType,
		CreatedAt:  now(),
	}
	if err := s.db.CreateDirectMessage(ctx, msg); err != nil {
		return DirectMessageView{}, internal("failed to save message", err)
	}
	return newDirectMessageView(msg), nil
}

// SendGroup сохраняет сообщение группы. Членство отправителя проверяется
// на каждой отправке.
func (s *MessageService) SendGroup(ctx context.Context, senderID, groupID uuid.UUID, content string, msgType models.MessageType) (GroupMessageView, error) {
	if senderID == uuid.Nil || groupID == uuid.Nil || strings.TrimSpace(content) == "" {
		return GroupMessageView{}, invalidInput("senderId, groupId and message are required")
	}
	if !msgType.Valid() {
		return GroupMessageView{}, invalidInput("unsupported message type")
	}
	sender, err := s.db.GetUser(ctx, senderID)
	if err != nil {
		return GroupMessageView{}, lookupErr(err, "sender")
	}
	if err := requireActiveMember(ctx, s.db, groupID, senderID); err != nil {
		return GroupMessageView{}, err
	}

	msg := &models.GroupMessage{
		GroupID:   groupID,
		SenderID:  senderID,
		Content:   content,
		Type:      msgType,
		CreatedAt: now(),
	}
	if err := s.db.CreateGroupMessage(ctx, msg); err != nil {
		return GroupMessageView{}, internal("failed to save message", err)
	}
	return newGroupMessageView(msg, sender), nil
}

// ListDirect история переписки, старые сообщения первыми
func (s *MessageService) ListDirect(ctx context.Context, callerID, peerID uuid.UUID) ([]DirectMessageView, error) {
	if peerID == uuid.Nil {
		return nil, invalidInput("userId is required")
	}
	if _, err := s.db.GetUser(ctx, peerID); err != nil {
		return nil, lookupErr(err, "user")
	}
	messages, err := s.db.ListDirectMessages(ctx, callerID, peerID)
	if err != nil {
		return nil, internal("failed to load messages", err)
	}
	views := make([]DirectMessageView, 0, len(messages))
	for i := range messages {
		views = append(views, newDirectMessageView(&messages[i]))
	}
	return views, nil
}

// ListGroup история группы, доступна только активным участникам
func (s *MessageService) ListGroup(ctx context.Context, groupID, callerID uuid.UUID) ([]GroupMessageView, error) {
	if err := requireActiveMember(ctx, s.db, groupID, callerID); err != nil {
		return nil, err
	}
	messages, err := s.db.ListGroupMessages(ctx, groupID)
	if err != nil {
		return nil, internal("failed to load messages", err)
	}
	views := make([]GroupMessageView, 0, len(messages))
	for i := range messages {
		views = append(views, newGroupMessageView(&messages[i], &messages[i].Sender))
	}
	return views, nil
}
