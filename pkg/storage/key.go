package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ChatIndividual = "individual"
	ChatGroup      = "group"
)

var ErrUnknownChatType = errors.New("chatType must be individual or group")

// MediaCategory раскладывает файлы по папкам по MIME типу
func MediaCategory(fileType string) string {
	switch {
	case strings.HasPrefix(fileType, "image/"):
		return "images"
	case strings.HasPrefix(fileType, "video/"):
		return "videos"
	default:
		return "docs"
	}
}

// ObjectKey ключ объекта:
// individual/<senderId>/<category>/<unixMillis>_<fileName> или
// groups/<groupId>/<category>/<unixMillis>_<fileName>
func ObjectKey(chatType string, ownerID uuid.UUID, fileType, fileName string, at time.Time) (string, error) {
	var prefix string
	switch chatType {
	case ChatIndividual:
		prefix = "individual"
	case ChatGroup:
		prefix = "groups"
	default:
		return "", ErrUnknownChatType
	}

	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "", errors.New("fileName is invalid")
	}
	return fmt.Sprintf("%s/%s/%s/%d_%s", prefix, ownerID, MediaCategory(fileType), at.UnixMilli(), name), nil
}
