package ws

import (
	"fmt"
	"sync"
)

// Hub tracks which clients are joined to which room. One mutex guards the
// whole room table; broadcasts never block on a slow member because each
// client buffers its own send queue.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*Client]bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

// PrivateRoomName derives the room key of a conversation.
func PrivateRoomName(conversationID int) string {
	return fmt.Sprintf("private_chat_%d", conversationID)
}

// Join inserts the client into the room, creating the room on first join.
func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[room] = members
	}
	members[c] = true
}

// Leave removes the client from the room and drops its send queue. Empty
// rooms are deleted.
func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		return
	}

	if members[c] {
		delete(members, c)
		c.close()
	}

	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast queues the payload to every current member of the room, the
// sender included. A member whose queue is full is closed and removed;
// the rest are unaffected.
func (h *Hub) Broadcast(room string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.rooms[room] {
		select {
		case c.send <- payload:
		default:
			delete(h.rooms[room], c)
			c.close()
		}
	}

	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
}

// RoomSize returns the number of clients currently joined to the room.
func (h *Hub) RoomSize(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.rooms[room])
}
