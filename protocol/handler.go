package protocol

import (
	"encoding/json"
	"log/slog"

	"collabcanvas/domain"
)

// ServerHandler routes inbound frames on the relay. It reads only the
// envelope and the room ID: drawing payloads stay opaque and are forwarded
// verbatim. Payload content never fails a relay; unparseable frames are
// logged and dropped.
type ServerHandler struct {
	registry domain.Registry
}

func NewServerHandler(r domain.Registry) *ServerHandler {
	return &ServerHandler{registry: r}
}

func (h *ServerHandler) Handle(conn domain.Connection, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Warn("invalid message", "clientId", conn.ID(), "error", err)
		return
	}

	switch env.Event {
	case EventJoinRoom:
		var join JoinRoom
		if err := json.Unmarshal(env.Data, &join); err != nil || join.RoomID == "" {
			slog.Warn("invalid join-room", "clientId", conn.ID(), "error", err)
			return
		}
		h.registry.Join(conn, join.RoomID)

	case EventCursorMove:
		var cur CursorMove
		if err := json.Unmarshal(env.Data, &cur); err != nil {
			slog.Warn("invalid cursor-move", "clientId", conn.ID(), "error", err)
			return
		}
		cur.ClientID = conn.ID()
		h.relayOp(conn, cur, cur.RoomID)

	case EventUndo, EventRedo:
		roomID := h.bareRoomID(env.Data, conn)
		if roomID == "" {
			return
		}
		notice := any(UndoNotice{RoomID: roomID, ClientID: conn.ID()})
		if env.Event == EventRedo {
			notice = RedoNotice{RoomID: roomID, ClientID: conn.ID()}
		}
		h.relayOp(conn, notice, roomID)

	default:
		h.registry.Relay(h.roomID(env, conn), data, conn.ID())
	}
}

// relayOp re-marshals a rewritten operation and relays it.
func (h *ServerHandler) relayOp(conn domain.Connection, op any, roomID string) {
	frame, err := Marshal(op)
	if err != nil {
		slog.Warn("marshal error", "clientId", conn.ID(), "error", err)
		return
	}
	h.registry.Relay(roomID, frame, conn.ID())
}

// roomID extracts the target room from an opaque payload: an object with a
// roomId field, a bare string, or failing both the connection's own room.
func (h *ServerHandler) roomID(env Envelope, conn domain.Connection) string {
	var obj struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(env.Data, &obj); err == nil && obj.RoomID != "" {
		return obj.RoomID
	}
	var s string
	if err := json.Unmarshal(env.Data, &s); err == nil && s != "" {
		return s
	}
	return conn.Room()
}

func (h *ServerHandler) bareRoomID(data json.RawMessage, conn domain.Connection) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s != "" {
		return s
	}
	return conn.Room()
}
