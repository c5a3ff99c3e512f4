package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер сообщения
	maxMessageSize = 512 * 1024 // 512KB
)

type ClientMessageHandler interface {
	HandleMessage(client *Client, msg *Message) error
}

type ClientOptions struct {
	SendBuffer      int
	EventsPerSecond float64
	EventBurst      int
}

func DefaultClientOptions() ClientOptions {
	return ClientOptions{SendBuffer: 256, EventsPerSecond: 20, EventBurst: 40}
}

// Client одно живое соединение. Комнаты хранятся по id, сами комнаты
// ссылаются на соединение тоже только по id.
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte

	hub     *Hub
	limiter *rate.Limiter

	mu     sync.RWMutex
	rooms  map[RoomID]struct{}
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, opts ClientOptions) *Client {
	return &Client{
		ID:      uuid.New(),
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan []byte, opts.SendBuffer),
		hub:     hub,
		limiter: rate.NewLimiter(rate.Limit(opts.EventsPerSecond), opts.EventBurst),
		rooms:   make(map[RoomID]struct{}),
	}
}

// ReadPump читает события клиента. Ошибка обработки уходит только этому клиенту.
func (c *Client) ReadPump(handler ClientMessageHandler) {
	defer func() {
		c.hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("conn_id", c.ID.String()).Msg("websocket read error")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			c.SendError(ErrInvalidMessage.Error())
			continue
		}

		if !c.limiter.Allow() {
			c.SendError(ErrRateLimited.Error())
			continue
		}

		switch msg.Type {
		case TypePong:
			continue
		case TypePing:
			c.SendMessage(TypePong, nil)
			continue
		}

		if handler != nil {
			if err := handler.HandleMessage(c, &msg); err != nil {
				log.Debug().Err(err).Str("conn_id", c.ID.String()).Str("event", string(msg.Type)).Msg("event rejected")
				c.SendError(err.Error())
			}
		}
	}
}

// WritePump отправляет сообщения клиенту
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub закрыл канал
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) SendMessage(msgType MessageType, data interface{}) error {
	payload, err := encode(msgType, data)
	if err != nil {
		return err
	}
	if !c.enqueue(payload) {
		return ErrClientQueueFull
	}
	return nil
}

func (c *Client) SendError(errorMsg string) {
	c.SendMessage(TypeErrorMessage, ErrorPayload{Message: errorMsg})
}

func (c *Client) GetRooms() []RoomID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make([]RoomID, 0, len(c.rooms))
	for roomID := range c.rooms {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// enqueue не блокирует. После close ничего не делает.
func (c *Client) enqueue(payload []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) addRoom(roomID RoomID) {
	c.mu.Lock()
	c.rooms[roomID] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) removeRoom(roomID RoomID) {
	c.mu.Lock()
	delete(c.rooms, roomID)
	c.mu.Unlock()
}
