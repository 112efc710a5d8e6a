package domain

// Connection is one live participant. A connection belongs to at most one
// room at a time; the room is empty until the first join-room message.
type Connection interface {
	ID() string
	Room() string
	SetRoom(room string)
	Send(data []byte) error
	Close() error
}

// Registry tracks room membership and relays payloads to room members.
// Relay is fire-and-forget: payloads are opaque, there is no retry, and a
// recipient whose transport is gone simply misses the message.
type Registry interface {
	Join(conn Connection, roomID string)
	Leave(conn Connection)
	Relay(roomID string, payload []byte, excludeID string)
	Stats() (rooms, clients int)
}

// MessageHandler processes one inbound frame from a connection.
type MessageHandler interface {
	Handle(conn Connection, data []byte)
}
