package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/thereayou/groupchat/internal/handlers/dto"
	"github.com/thereayou/groupchat/pkg/auth"
)

const (
	UserIDKey = "userID"
	TokenKey  = "accessToken"
)

// AuthMiddleware проверяет JWT токен из заголовка Authorization
func AuthMiddleware(jwtManager *auth.JWTManager, revoker auth.TokenRevoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			unauthorized(c, "missing or invalid token")
			return
		}
		authenticate(c, token, jwtManager, revoker)
	}
}

// WSAuthMiddleware специальный middleware для WebSocket, токен может прийти в ?token=
func WSAuthMiddleware(jwtManager *auth.JWTManager, revoker auth.TokenRevoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractToken(c.Request)
		if err != nil {
			unauthorized(c, "missing token")
			return
		}
		authenticate(c, token, jwtManager, revoker)
	}
}

// UserID достает id пользователя, установленный AuthMiddleware
func UserID(c *gin.Context) uuid.UUID {
	return c.MustGet(UserIDKey).(uuid.UUID)
}

func authenticate(c *gin.Context, token string, jwtManager *auth.JWTManager, revoker auth.TokenRevoker) {
	// Проверяем, не в черном списке ли токен
	revoked, err := revoker.IsRevoked(c.Request.Context(), token)
	if err != nil {
		log.Error().Err(err).Msg("token revocation lookup failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			dto.Failure(http.StatusInternalServerError, dto.CodeInternal, "internal server error"))
		return
	}
	if revoked {
		unauthorized(c, "token is revoked")
		return
	}

	userID, err := jwtManager.UserID(token)
	if err != nil {
		unauthorized(c, "invalid token")
		return
	}

	c.Set(UserIDKey, userID)
	c.Set(TokenKey, token)
	c.Next()
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Failure(http.StatusUnauthorized, dto.CodeUnauthorized, msg))
}
