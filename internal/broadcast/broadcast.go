package broadcast

import (
	"encoding/json"
	"sync"

	"quizbuzzer/internal/protocol"

	"github.com/rs/zerolog/log"
)

// SSEMessage is one server-sent event: the outbound message name and its
// JSON payload.
type SSEMessage struct {
	Event string
	Data  string
}

// Broadcaster fans room messages out to read-only SSE spectators. It only
// ever carries room-wide and participant-view messages.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[string]map[chan SSEMessage]bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]map[chan SSEMessage]bool),
	}
}

func (b *Broadcaster) Subscribe(room string) chan SSEMessage {
	ch := make(chan SSEMessage, 10)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clients[room] == nil {
		b.clients[room] = make(map[chan SSEMessage]bool)
	}
	b.clients[room][ch] = true
	return ch
}

func (b *Broadcaster) Unsubscribe(room string, ch chan SSEMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.clients[room]
	if !subs[ch] {
		return
	}
	delete(subs, ch)
	if len(subs) == 0 {
		delete(b.clients, room)
	}
	close(ch)
}

// Subscribers counts spectators of one room.
func (b *Broadcaster) Subscribers(room string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients[room])
}

// Publish encodes msg.Data and sends it as an event named msg.Type.
func (b *Broadcaster) Publish(room string, msg protocol.Message) {
	data := "null"
	if msg.Data != nil {
		raw, err := json.Marshal(msg.Data)
		if err != nil {
			log.Error().Err(err).Str("type", msg.Type).Msg("marshal sse payload")
			return
		}
		data = string(raw)
	}
	b.BroadcastOOB(room, msg.Type, data)
}

func (b *Broadcaster) BroadcastOOB(room, event, data string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients[room] {
		select {
		case ch <- SSEMessage{Event: event, Data: data}:
		default:
			// skip clients with full data channels
		}
	}
}
