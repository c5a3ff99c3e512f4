package dto

import "github.com/google/uuid"

type PresignRequest struct {
	FileName   string    `json:"fileName" binding:"required"`
	FileType   string    `json:"fileType" binding:"required"`
	ChatType   string    `json:"chatType" binding:"required,oneof=individual group"`
	ReceiverID uuid.UUID `json:"receiverId"`
	GroupID    uuid.UUID `json:"groupId"`
}
