package ws

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"chat-sync/internal/models"
	"chat-sync/internal/observability"
)

// RoomKey identifies one gateway subscription room: a scope plus the
// optional row filters a client asked for.
type RoomKey struct {
	Scope          models.Scope
	ConversationID string
	UserID         string
}

// matches reports whether an event should be fanned out to the room.
func (k RoomKey) matches(ev models.ChangeEvent) bool {
	if k.Scope != ev.Scope {
		return false
	}
	if k.ConversationID != "" && k.ConversationID != ev.ConversationID {
		return false
	}
	if k.UserID != "" && k.UserID != ev.UserID {
		return false
	}
	return true
}

// Hub maintains active gateway subscription rooms.
type Hub struct {
	mu    sync.RWMutex
	rooms map[RoomKey]map[*websocket.Conn]ConnInfo
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[RoomKey]map[*websocket.Conn]ConnInfo)}
}

// AddClient registers a websocket connection under its subscription key.
func (h *Hub) AddClient(key RoomKey, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[key]; !ok {
		h.rooms[key] = make(map[*websocket.Conn]ConnInfo)
	}
	h.rooms[key][conn] = info
}

// RemoveClient removes a websocket connection.
func (h *Hub) RemoveClient(key RoomKey, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[key]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, key)
		}
	}
}

// Broadcast fans a change event out to every room it matches.
func (h *Hub) Broadcast(ev models.ChangeEvent) {
	env, err := ev.Envelope()
	if err != nil {
		log.Printf("event encode error: %v", err)
		return
	}
	payload, err := envelopeJSON(env)
	if err != nil {
		log.Printf("event encode error: %v", err)
		return
	}

	h.mu.RLock()
	targets := make(map[*websocket.Conn]RoomKey)
	for key, conns := range h.rooms {
		if !key.matches(ev) {
			continue
		}
		for conn := range conns {
			targets[conn] = key
		}
	}
	h.mu.RUnlock()

	for conn, key := range targets {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.publishConnError(key, conn, err)
			h.RemoveClient(key, conn)
		}
	}
}

func (h *Hub) publishConnError(key RoomKey, conn *websocket.Conn, err error) {
	h.mu.RLock()
	info, ok := h.rooms[key][conn]
	h.mu.RUnlock()
	if !ok {
		return
	}

	publishSubscriptionEvent(key, info, "ws_error", err.Error())
	observability.IncWSEvent(string(key.Scope), "ws_error")
}
