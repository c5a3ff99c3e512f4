package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/groupchat/internal/middleware"
	"github.com/thereayou/groupchat/internal/services"
)

const noMessages = "No messages found"

type HTTPMessageHandler struct {
	messages *services.MessageService
}

func NewHTTPMessageHandler(messages *services.MessageService) *HTTPMessageHandler {
	return &HTTPMessageHandler{messages: messages}
}

// GetDirectMessages переписка с пользователем, старые сообщения первыми
func (h *HTTPMessageHandler) GetDirectMessages(c *gin.Context) {
	peerID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}

	messages, err := h.messages.ListDirect(c.Request.Context(), middleware.UserID(c), peerID)
	if err != nil {
		fail(c, err)
		return
	}

	msg := "messages"
	if len(messages) == 0 {
		msg = noMessages
	}
	respond(c, http.StatusOK, msg, gin.H{"messages": messages})
}

// GetGroupMessages история группы для активных участников
func (h *HTTPMessageHandler) GetGroupMessages(c *gin.Context) {
	groupID, ok := uuidParam(c, "groupId")
	if !ok {
		return
	}

	messages, err := h.messages.ListGroup(c.Request.Context(), groupID, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	msg := "messages"
	if len(messages) == 0 {
		msg = noMessages
	}
	respond(c, http.StatusOK, msg, gin.H{"messages": messages})
}
