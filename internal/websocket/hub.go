package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const statsInterval = time.Minute

// RoomID логический канал: пара собеседников или группа
type RoomID string

// DirectRoomID одинаковый для обоих участников независимо от порядка
func DirectRoomID(a, b uuid.UUID) RoomID {
	ids := []string{a.String(), b.String()}
	sort.Strings(ids)
	return RoomID(ids[0] + "_" + ids[1])
}

func GroupRoomID(groupID uuid.UUID) RoomID {
	return RoomID(groupID.String())
}

// room множество id соединений. mu держится на время рассылки, чтобы все
// подписчики получали сообщения комнаты в одном порядке.
type room struct {
	mu      sync.Mutex
	members map[uuid.UUID]struct{}
}

// Hub реестр живых соединений и их подписок на комнаты
type Hub struct {
	// Соединения по id
	clients map[uuid.UUID]*Client

	// Соединения пользователя (один пользователь может иметь несколько соединений)
	userClients map[uuid.UUID]map[uuid.UUID]struct{}

	rooms map[RoomID]*room

	closed bool
	mu     sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		rooms:       make(map[RoomID]*room),
	}
}

// Run работает до отмены ctx, затем закрывает все соединения
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.Shutdown()
			return
		case <-ticker.C:
			h.mu.RLock()
			log.Debug().
				Int("connections", len(h.clients)).
				Int("users", len(h.userClients)).
				Int("rooms", len(h.rooms)).
				Msg("hub stats")
			h.mu.RUnlock()
		}
	}
}

// Shutdown закрывает очереди всех соединений. WritePump отправит close frame.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for _, c := range h.clients {
		c.close()
	}
	h.clients = make(map[uuid.UUID]*Client)
	h.userClients = make(map[uuid.UUID]map[uuid.UUID]struct{})
	h.rooms = make(map[RoomID]*room)
	wsConnections.Set(0)
	wsRooms.Set(0)
}

func (h *Hub) Register(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		c.close()
		return ErrHubClosed
	}

	h.clients[c.ID] = c
	if h.userClients[c.UserID] == nil {
		h.userClients[c.UserID] = make(map[uuid.UUID]struct{})
	}
	h.userClients[c.UserID][c.ID] = struct{}{}
	wsConnections.Inc()

	log.Debug().Str("conn_id", c.ID.String()).Str("user_id", c.UserID.String()).Msg("client registered")
	return nil
}

// Unregister убирает соединение из всех комнат и закрывает его очередь
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.ID] != c {
		return
	}
	delete(h.clients, c.ID)
	if conns, ok := h.userClients[c.UserID]; ok {
		delete(conns, c.ID)
		if len(conns) == 0 {
			delete(h.userClients, c.UserID)
		}
	}
	for _, roomID := range c.GetRooms() {
		h.removeFromRoomUnsafe(c, roomID)
	}
	c.close()
	wsConnections.Dec()

	log.Debug().Str("conn_id", c.ID.String()).Str("user_id", c.UserID.String()).Msg("client unregistered")
}

// Join подписывает соединение на комнату. Повторный вызов ничего не меняет.
func (h *Hub) Join(c *Client, roomID RoomID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.ID] != c {
		return ErrClientNotRegistered
	}

	r, ok := h.rooms[roomID]
	if !ok {
		r = &room{members: make(map[uuid.UUID]struct{})}
		h.rooms[roomID] = r
		wsRooms.Inc()
	}
	r.members[c.ID] = struct{}{}
	c.addRoom(roomID)
	return nil
}

func (h *Hub) Leave(c *Client, roomID RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoomUnsafe(c, roomID)
}

// EvictUser отписывает все соединения пользователя от комнаты и уведомляет их
func (h *Hub) EvictUser(roomID RoomID, userID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		return 0
	}
	evicted := 0
	for connID := range h.userClients[userID] {
		if _, in := r.members[connID]; !in {
			continue
		}
		c := h.clients[connID]
		h.removeFromRoomUnsafe(c, roomID)
		h.notifyLeft(c, roomID)
		evicted++
	}
	return evicted
}

// CloseRoom отписывает всех от комнаты
func (h *Hub) CloseRoom(roomID RoomID) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		return 0
	}
	closed := 0
	for connID := range r.members {
		if c, ok := h.clients[connID]; ok {
			c.removeRoom(roomID)
			h.notifyLeft(c, roomID)
			closed++
		}
	}
	delete(h.rooms, roomID)
	wsRooms.Dec()
	return closed
}

func (h *Hub) EvictFromGroup(groupID, userID uuid.UUID) {
	if n := h.EvictUser(GroupRoomID(groupID), userID); n > 0 {
		log.Info().Str("group_id", groupID.String()).Str("user_id", userID.String()).Int("connections", n).Msg("evicted from group room")
	}
}

func (h *Hub) CloseGroup(groupID uuid.UUID) {
	if n := h.CloseRoom(GroupRoomID(groupID)); n > 0 {
		log.Info().Str("group_id", groupID.String()).Int("connections", n).Msg("group room closed")
	}
}

// NotifyMembership сообщает всем соединениям пользователя о смене его
// роли или статуса в группе
func (h *Hub) NotifyMembership(groupID, userID uuid.UUID, role, status string) {
	n, err := h.SendToUser(userID, TypeMembershipChanged, MembershipPayload{GroupID: groupID, Role: role, Status: status})
	if err != nil {
		log.Error().Err(err).Str("group_id", groupID.String()).Msg("failed to encode membership notice")
		return
	}
	log.Debug().Str("group_id", groupID.String()).Str("user_id", userID.String()).Str("status", status).Int("connections", n).Msg("membership notice sent")
}

// Broadcast доставляет сообщение всем подписчикам комнаты. Без подтверждений:
// если очередь соединения полна, сообщение для него теряется.
func (h *Hub) Broadcast(roomID RoomID, msgType MessageType, data interface{}) (int, error) {
	payload, err := encode(msgType, data)
	if err != nil {
		return 0, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rooms[roomID]
	if !ok {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delivered := 0
	for connID := range r.members {
		c, ok := h.clients[connID]
		if !ok {
			continue
		}
		if c.enqueue(payload) {
			delivered++
			continue
		}
		wsDropped.Inc()
		log.Warn().Str("conn_id", connID.String()).Str("room", string(roomID)).Msg("client queue full, frame dropped")
	}
	wsBroadcasts.WithLabelValues(string(msgType)).Inc()
	return delivered, nil
}

// SendToUser отправляет сообщение во все соединения пользователя
func (h *Hub) SendToUser(userID uuid.UUID, msgType MessageType, data interface{}) (int, error) {
	payload, err := encode(msgType, data)
	if err != nil {
		return 0, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for connID := range h.userClients[userID] {
		if c, ok := h.clients[connID]; ok && c.enqueue(payload) {
			delivered++
		}
	}
	return delivered, nil
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) RoomSize(roomID RoomID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[roomID]; ok {
		return len(r.members)
	}
	return 0
}

// IsSubscribed сообщает, подписано ли хотя бы одно соединение пользователя на комнату
func (h *Hub) IsSubscribed(userID uuid.UUID, roomID RoomID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rooms[roomID]
	if !ok {
		return false
	}
	for connID := range h.userClients[userID] {
		if _, in := r.members[connID]; in {
			return true
		}
	}
	return false
}

// IsOnline есть ли у пользователя хотя бы одно живое соединение
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID]) > 0
}

func (h *Hub) removeFromRoomUnsafe(c *Client, roomID RoomID) {
	c.removeRoom(roomID)

	r, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(r.members, c.ID)
	if len(r.members) == 0 {
		delete(h.rooms, roomID)
		wsRooms.Dec()
	}
}

func (h *Hub) notifyLeft(c *Client, roomID RoomID) {
	payload, err := encode(TypeRoomLeft, RoomPayload{RoomID: roomID})
	if err != nil {
		return
	}
	c.enqueue(payload)
}
