package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/handlers/dto"
	"github.com/thereayou/groupchat/internal/middleware"
	"github.com/thereayou/groupchat/internal/services"
)

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, dto.Success(status, message, data))
}

// fail переводит ошибку сервиса в статус и код ответа
func fail(c *gin.Context, err error) {
	status, code := statusFor(err)

	msg := "internal server error"
	var svcErr *services.Error
	switch {
	case errors.As(err, &svcErr):
		msg = svcErr.Message
	case errors.Is(err, services.ErrUploadsDisabled):
		msg = err.Error()
	}

	if status >= http.StatusInternalServerError {
		logFailure(c, err)
	}
	c.AbortWithStatusJSON(status, dto.Failure(status, code, msg))
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.Failure(http.StatusBadRequest, dto.CodeInvalidInput, msg))
}

func statusFor(err error) (int, string) {
	if errors.Is(err, services.ErrUploadsDisabled) {
		return http.StatusServiceUnavailable, dto.CodeUnavailable
	}
	switch services.KindOf(err) {
	case services.ErrInvalidInput:
		return http.StatusBadRequest, dto.CodeInvalidInput
	case services.ErrAlreadyExists:
		return http.StatusBadRequest, dto.CodeAlreadyExists
	case services.ErrInvalidState:
		return http.StatusBadRequest, dto.CodeInvalidState
	case services.ErrUnauthenticated:
		return http.StatusUnauthorized, dto.CodeUnauthorized
	case services.ErrNotAuthorized:
		return http.StatusForbidden, dto.CodeForbidden
	case services.ErrNotFound:
		return http.StatusNotFound, dto.CodeNotFound
	default:
		return http.StatusInternalServerError, dto.CodeInternal
	}
}

// logFailure пишет 5xx ошибку в лог запроса вместе с причиной
func logFailure(c *gin.Context, err error) {
	event := middleware.LoggerFrom(c).Error().Str("error_message", err.Error())
	var svcErr *services.Error
	if errors.As(err, &svcErr) && svcErr.Err != nil {
		event = event.AnErr("cause", svcErr.Err)
	}
	event.Msg("request failed")
}

// uuidParam разбирает id из пути, при ошибке сам отвечает 400
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
