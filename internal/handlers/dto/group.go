package dto

import "github.com/google/uuid"

type GroupNameRequest struct {
	Name string `json:"name" binding:"required"`
}

type GroupMemberRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}
