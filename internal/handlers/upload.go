package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/groupchat/internal/handlers/dto"
	"github.com/thereayou/groupchat/internal/middleware"
	"github.com/thereayou/groupchat/internal/services"
)

type UploadHandler struct {
	uploads *services.UploadService
}

func NewUploadHandler(uploads *services.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Presign выдает ссылку для загрузки файла и ключ для медиа сообщения
func (h *UploadHandler) Presign(c *gin.Context) {
	var req dto.PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	creds, err := h.uploads.Presign(c.Request.Context(), middleware.UserID(c), services.UploadRequest{
		FileName:   req.FileName,
		FileType:   req.FileType,
		ChatType:   req.ChatType,
		ReceiverID: req.ReceiverID,
		GroupID:    req.GroupID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "upload url generated", creds)
}
