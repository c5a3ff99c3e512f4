package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/groupchat/internal/handlers/dto"
	"github.com/thereayou/groupchat/internal/middleware"
	"github.com/thereayou/groupchat/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "user registered", user)
}

// Login выдаёт access и refresh токены
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tokens, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "logged in", tokens)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tokens, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "token refreshed", tokens)
}

// Logout отзывает текущий токен до его истечения
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.auth.Logout(c.Request.Context(), middleware.UserID(c), c.GetString(middleware.TokenKey))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "logged out", nil)
}

// Me возвращает информацию о текущем пользователе
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "user info", user)
}
