package websocket

import "errors"

var (
	ErrClientQueueFull     = errors.New("client queue is full")
	ErrInvalidMessage      = errors.New("invalid message format")
	ErrUnknownEvent        = errors.New("unknown event")
	ErrRateLimited         = errors.New("too many events, slow down")
	ErrClientNotRegistered = errors.New("connection is not registered")
	ErrHubClosed           = errors.New("hub is shut down")
)
