package hub

import (
	"log/slog"
	"sync"

	"collabcanvas/domain"
	"collabcanvas/protocol"
)

type room struct {
	clients map[string]domain.Connection
	mu      sync.RWMutex
}

// Hub is the room registry: room ID to member connections. Rooms are
// created on first join and removed when the last member leaves; they are
// routing labels only and hold no drawing state.
type Hub struct {
	rooms map[string]*room
	mu    sync.RWMutex
}

func New() *Hub {
	return &Hub{
		rooms: make(map[string]*room),
	}
}

// Join adds a connection to a room, moving it out of its previous room if
// it had one. Other members get a best-effort user-joined notice.
func (h *Hub) Join(conn domain.Connection, roomID string) {
	if prev := conn.Room(); prev != "" {
		if prev == roomID {
			// Already a member; peers get no duplicate notice.
			return
		}
		h.Leave(conn)
	}

	h.mu.Lock()
	r, exists := h.rooms[roomID]
	if !exists {
		r = &room{clients: make(map[string]domain.Connection)}
		h.rooms[roomID] = r
	}
	h.mu.Unlock()

	r.mu.Lock()
	r.clients[conn.ID()] = conn
	count := len(r.clients)
	r.mu.Unlock()

	conn.SetRoom(roomID)
	slog.Info("client joined", "room", roomID, "clientId", conn.ID(), "clients", count)

	h.notify(roomID, conn.ID(), protocol.UserJoined{ClientID: conn.ID()})
}

// Leave removes a connection from its room and notifies the remaining
// members. Safe to call for a connection that never joined.
func (h *Hub) Leave(conn domain.Connection) {
	roomID := conn.Room()
	if roomID == "" {
		return
	}

	h.mu.RLock()
	r, exists := h.rooms[roomID]
	h.mu.RUnlock()

	if !exists {
		return
	}

	r.mu.Lock()
	delete(r.clients, conn.ID())
	count := len(r.clients)
	r.mu.Unlock()

	conn.SetRoom("")
	slog.Info("client left", "room", roomID, "clientId", conn.ID(), "clients", count)

	if count == 0 {
		h.mu.Lock()
		delete(h.rooms, roomID)
		h.mu.Unlock()
		slog.Info("room removed", "room", roomID)
		return
	}

	h.notify(roomID, conn.ID(), protocol.UserLeft{ClientID: conn.ID()})
}

// Relay delivers a payload unchanged to every member of the room except
// the excluded sender. Fire-and-forget: a recipient whose send fails is
// unregistered, the payload is not retried, and an unknown or empty room
// is a no-op.
func (h *Hub) Relay(roomID string, payload []byte, excludeID string) {
	h.mu.RLock()
	r, exists := h.rooms[roomID]
	h.mu.RUnlock()

	if !exists {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, conn := range r.clients {
		if id == excludeID {
			continue
		}
		if err := conn.Send(payload); err != nil {
			go func(c domain.Connection) {
				h.Leave(c)
			}(conn)
		}
	}
}

func (h *Hub) Stats() (rooms, clients int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms = len(h.rooms)
	for _, r := range h.rooms {
		r.mu.RLock()
		clients += len(r.clients)
		r.mu.RUnlock()
	}
	return rooms, clients
}

// notify broadcasts a presence notice to the room, excluding the subject.
func (h *Hub) notify(roomID, excludeID string, op any) {
	frame, err := protocol.Marshal(op)
	if err != nil {
		return
	}
	h.Relay(roomID, frame, excludeID)
}
