package dto

import "time"

// Коды ошибок в ответе
const (
	CodeInvalidInput  = "invalid_input"
	CodeAlreadyExists = "already_exists"
	CodeInvalidState  = "invalid_state"
	CodeUnauthorized  = "unauthorized"
	CodeForbidden     = "forbidden"
	CodeNotFound      = "not_found"
	CodeInternal      = "internal_error"
	CodeUnavailable   = "unavailable"
)

// Envelope единый формат ответа API
type Envelope struct {
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	ErrorCode string      `json:"errorCode,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func Success(status int, message string, data interface{}) Envelope {
	return Envelope{
		Status:    status,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

func Failure(status int, code, message string) Envelope {
	return Envelope{
		Status:    status,
		Message:   message,
		ErrorCode: code,
		Timestamp: time.Now().UTC(),
	}
}
