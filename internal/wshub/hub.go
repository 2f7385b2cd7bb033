package wshub

import (
	"context"
	"encoding/json"
	"sync"

	"quizbuzzer/internal/protocol"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"
)

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	room string
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				log.Debug().Err(err).Str("conn", c.ID).Msg("websocket write failed")
				return
			}
		}
	}
}

// Hub tracks every WebSocket connection and the room each one joined.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes a client from its room and closes its Send channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[id]
	if !ok {
		return
	}
	h.leaveLocked(c)
	close(c.Send)
	delete(h.clients, id)
}

// Join moves a client into room, leaving any room it was in before.
func (h *Hub) Join(room, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[id]
	if !ok {
		return
	}
	h.leaveLocked(c)
	members := h.rooms[room]
	if members == nil {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[id] = c
	c.room = room
}

// Leave takes a client out of its room without disconnecting it.
func (h *Hub) Leave(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		h.leaveLocked(c)
	}
}

func (h *Hub) leaveLocked(c *Client) {
	if c.room == "" {
		return
	}
	if members := h.rooms[c.room]; members != nil {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, c.room)
		}
	}
	c.room = ""
}

// Broadcast sends msg to every client in room.
func (h *Hub) Broadcast(room string, msg protocol.Message) {
	h.BroadcastExcept(room, "", msg)
}

// BroadcastExcept sends a message to every client in room except one.
// Non-blocking: drops if a channel is full.
func (h *Hub) BroadcastExcept(room, exceptID string, msg protocol.Message) {
	data, ok := encode(msg)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.rooms[room] {
		if id == exceptID {
			continue
		}
		deliver(c, data)
	}
}

// Send delivers msg to one client.
func (h *Hub) Send(id string, msg protocol.Message) {
	data, ok := encode(msg)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[id]; ok {
		deliver(c, data)
	}
}

// Stats reports the number of connections and occupied rooms.
func (h *Hub) Stats() (clients, rooms int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients), len(h.rooms)
}

// Room returns a publisher bound to one room code.
func (h *Hub) Room(code string) *RoomPublisher {
	return &RoomPublisher{hub: h, code: code}
}

// RoomPublisher adapts the hub to the per-room publisher used by sessions.
type RoomPublisher struct {
	hub  *Hub
	code string
}

func (p *RoomPublisher) Broadcast(msg protocol.Message) {
	p.hub.Broadcast(p.code, msg)
}

func (p *RoomPublisher) BroadcastExcept(connID string, msg protocol.Message) {
	p.hub.BroadcastExcept(p.code, connID, msg)
}

func (p *RoomPublisher) Send(connID string, msg protocol.Message) {
	p.hub.Send(connID, msg)
}

func encode(msg protocol.Message) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("marshal outbound message")
		return nil, false
	}
	return data, true
}

func deliver(c *Client, data []byte) {
	select {
	case c.Send <- data:
	default:
		log.Warn().Str("conn", c.ID).Msg("send buffer full, dropping message")
	}
}

// DropRoom removes every client from room without disconnecting them.
func (h *Hub) DropRoom(room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.rooms[room] {
		c.room = ""
	}
	delete(h.rooms, room)
}
