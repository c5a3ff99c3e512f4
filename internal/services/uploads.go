package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/database"
	"github.com/thereayou/groupchat/pkg/storage"
)

// ErrUploadsDisabled объектное хранилище не настроено
var ErrUploadsDisabled = errors.New("uploads are not configured")

type UploadRequest struct {
	FileName   string
	FileType   string
	ChatType   string
	ReceiverID uuid.UUID
	GroupID    uuid.UUID
}

type UploadCredentials struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// UploadService выдает ссылку для загрузки файла. Ключ объекта потом
// отправляется как content медиа сообщения.
type UploadService struct {
	db        *database.Database
	presigner storage.Presigner
	ttl       time.Duration
	clock     func() time.Time
}

func NewUploadService(db *database.Database, presigner storage.Presigner, ttl time.Duration) *UploadService {
	return &UploadService{db: db, presigner: presigner, ttl: ttl, clock: time.Now}
}

func (s *UploadService) Presign(ctx context.Context, senderID uuid.UUID, req UploadRequest) (UploadCredentials, error) {
	if s.presigner == nil {
		return UploadCredentials{}, ErrUploadsDisabled
	}
	if strings.TrimSpace(req.FileName) == "" || strings.TrimSpace(req.FileType) == "" {
		return UploadCredentials{}, invalidInput("fileName and fileType are required")
	}

	owner := senderID
	switch req.ChatType {
	case storage.ChatIndividual:
		if req.ReceiverID == uuid.Nil {
			return UploadCredentials{}, invalidInput("receiverId is required")
		}
	case storage.ChatGroup:
		if err := requireActiveMember(ctx, s.db, req.GroupID, senderID); err != nil {
			return UploadCredentials{}, err
		}
		owner = req.GroupID
	default:
		return UploadCredentials{}, invalidInput(storage.ErrUnknownChatType.Error())
	}

	key, err := storage.ObjectKey(req.ChatType, owner, req.FileType, req.FileName, s.clock())
	if err != nil {
		return UploadCredentials{}, invalidInput(err.Error())
	}
	url, err := s.presigner.PresignPut(ctx, key, s.ttl)
	if err != nil {
		return UploadCredentials{}, internal("failed to generate upload url", err)
	}
	return UploadCredentials{URL: url, Key: key}, nil
}
