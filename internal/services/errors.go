package services

import (
	"errors"

	"github.com/thereayou/groupchat/internal/database"
)

// Виды ошибок. Проверяются через errors.Is.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrAlreadyExists   = errors.New("already exists")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrInternal        = errors.New("internal error")
)

// Error ошибка сервиса с сообщением для клиента
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf возвращает вид ошибки, для неизвестных ошибок ErrInternal
func KindOf(err error) error {
	for _, kind := range []error{ErrInvalidInput, ErrAlreadyExists, ErrUnauthenticated, ErrNotAuthorized, ErrNotFound, ErrInvalidState} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

func invalidInput(msg string) error    { return &Error{Kind: ErrInvalidInput, Message: msg} }
func alreadyExists(msg string) error   { return &Error{Kind: ErrAlreadyExists, Message: msg} }
func unauthenticated(msg string) error { return &Error{Kind: ErrUnauthenticated, Message: msg} }
func notAuthorized(msg string) error   { return &Error{Kind: ErrNotAuthorized, Message: msg} }
func notFound(msg string) error        { return &Error{Kind: ErrNotFound, Message: msg} }
func invalidState(msg string) error    { return &Error{Kind: ErrInvalidState, Message: msg} }

func internal(msg string, err error) error {
	return &Error{Kind: ErrInternal, Message: msg, Err: err}
}

// lookupErr переводит ошибку чтения из базы: отсутствие записи в NotFound,
// остальное в Internal. Ошибки сервиса пропускаются как есть.
func lookupErr(err error, what string) error {
	var svcErr *Error
	switch {
	case errors.As(err, &svcErr):
		return err
	case errors.Is(err, database.ErrNotFound):
		return notFound(what + " not found")
	default:
		return internal("failed to load "+what, err)
	}
}

// storeErr оборачивает ошибку записи, не трогая ошибки сервиса
func storeErr(err error, msg string) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	return internal(msg, err)
}
