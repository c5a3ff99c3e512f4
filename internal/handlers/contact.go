package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/groupchat/internal/handlers/dto"
	"github.com/thereayou/groupchat/internal/middleware"
	"github.com/thereayou/groupchat/internal/services"
)

type ContactHandler struct {
	contacts *services.ContactService
}

func NewContactHandler(contacts *services.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// AddContact добавляет контакт в обе стороны
func (h *ContactHandler) AddContact(c *gin.Context) {
	var req dto.AddContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	contact, err := h.contacts.AddContact(c.Request.Context(), middleware.UserID(c), req.ContactID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "contact added", contact)
}

func (h *ContactHandler) ListContacts(c *gin.Context) {
	contacts, err := h.contacts.ListContacts(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "contacts", contacts)
}

// LatestMessages контакты с последним сообщением переписки
func (h *ContactHandler) LatestMessages(c *gin.Context) {
	summaries, err := h.contacts.LatestPerContact(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "contacts with latest messages", summaries)
}

// GetContact данные одного контакта, 404 если пользователь не в контактах
func (h *ContactHandler) GetContact(c *gin.Context) {
	contactID, ok := uuidParam(c, "contactId")
	if !ok {
		return
	}
	contact, err := h.contacts.GetContact(c.Request.Context(), middleware.UserID(c), contactID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "contact details", contact)
}

func (h *ContactHandler) SearchUsers(c *gin.Context) {
	users, err := h.contacts.Search(c.Request.Context(), middleware.UserID(c), c.Param("query"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "users", users)
}
