package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ServanaApplication/servana-backend/internal/observability"
)

// Hub tracks every live websocket connection and its chat-group room
// memberships. One connection may sit in many rooms at once.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int]map[*websocket.Conn]bool
	conns map[*websocket.Conn]*connState
}

type connState struct {
	info    ConnInfo
	rooms   map[int]bool
	writeMu sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[int]map[*websocket.Conn]bool),
		conns: make(map[*websocket.Conn]*connState),
	}
}

// Register adds a connection to the hub. The connection receives global
// events immediately; room events only after JoinRoom.
func (h *Hub) Register(conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = &connState{info: info, rooms: make(map[int]bool)}
}

// Unregister drops a connection from the hub and from every room it joined.
// It returns the registered ConnInfo for disconnect logging.
func (h *Hub) Unregister(conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	state, ok := h.conns[conn]
	if !ok {
		return ConnInfo{}, false
	}
	for roomID := range state.rooms {
		h.leaveRoomLocked(roomID, conn)
	}
	delete(h.conns, conn)
	return state.info, true
}

// JoinRoom subscribes a connection to a chat group. Joining the same room
// twice is a no-op, so repeated join events never duplicate delivery.
func (h *Hub) JoinRoom(roomID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	state, ok := h.conns[conn]
	if !ok {
		return
	}
	if state.rooms[roomID] {
		return
	}
	state.rooms[roomID] = true
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[roomID][conn] = true
}

func (h *Hub) leaveRoomLocked(roomID int, conn *websocket.Conn) {
	if conns, ok := h.rooms[roomID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// RoomSize reports how many connections a room currently holds.
func (h *Hub) RoomSize(roomID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// BroadcastAll sends an event to every registered connection.
func (h *Hub) BroadcastAll(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket marshal error: %v", err)
		return
	}
	h.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		h.write(conn, payload)
	}
}

// BroadcastRoom sends an event to every connection joined to a room.
func (h *Hub) BroadcastRoom(roomID int, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket marshal error: %v", err)
		return
	}
	h.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(h.rooms[roomID]))
	for conn := range h.rooms[roomID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		h.write(conn, payload)
	}
}

// EmitTo sends an event to a single connection.
func (h *Hub) EmitTo(conn *websocket.Conn, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket marshal error: %v", err)
		return
	}
	h.write(conn, payload)
}

func (h *Hub) write(conn *websocket.Conn, payload []byte) {
	h.mu.RLock()
	state, ok := h.conns[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}

	state.writeMu.Lock()
	err := conn.WriteMessage(websocket.TextMessage, payload)
	state.writeMu.Unlock()
	if err != nil {
		log.Printf("websocket write error: %v", err)
		conn.Close()
		if info, ok := h.Unregister(conn); ok {
			observability.DecWSActive(info.Kind)
			observability.IncWSEvent(info.Kind, "ws_error")
		}
	}
}
