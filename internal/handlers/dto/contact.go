package dto

import "github.com/google/uuid"

type AddContactRequest struct {
	ContactID uuid.UUID `json:"contactId" binding:"required"`
}
