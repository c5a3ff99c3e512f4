package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/thereayou/groupchat/internal/middleware"
	ws "github.com/thereayou/groupchat/internal/websocket"
)

// WebSocketHandler управляет WebSocket соединениями
type WebSocketHandler struct {
	hub            *ws.Hub
	messageHandler *MessageHandler
	opts           ws.ClientOptions
	upgrader       websocket.Upgrader
}

// NewWebSocketHandler создает handler. Пустой allowedOrigins разрешает любой origin.
func NewWebSocketHandler(hub *ws.Hub, messageHandler *MessageHandler, opts ws.ClientOptions, allowedOrigins []string) *WebSocketHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &WebSocketHandler{
		hub:            hub,
		messageHandler: messageHandler,
		opts:           opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

// HandleWebSocket обрабатывает WebSocket соединения
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := middleware.UserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		middleware.LoggerFrom(c).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, userID, h.opts)
	if err := h.hub.Register(client); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("websocket register failed")
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, err.Error()))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(h.messageHandler)
}
