package server

import (
	"quizbuzzer/internal/broadcast"
	"quizbuzzer/internal/protocol"
	"quizbuzzer/internal/session"
	"quizbuzzer/internal/wshub"
)

// roomPublisher sends a room's messages to its websocket group and mirrors
// everything a participant may see to the room's SSE spectators.
type roomPublisher struct {
	code string
	ws   *wshub.RoomPublisher
	sse  *broadcast.Broadcaster
}

func newRoomPublisher(hub *wshub.Hub, sse *broadcast.Broadcaster) func(code string) session.Publisher {
	return func(code string) session.Publisher {
		return &roomPublisher{code: code, ws: hub.Room(code), sse: sse}
	}
}

func (p *roomPublisher) Broadcast(msg protocol.Message) {
	p.ws.Broadcast(msg)
	p.sse.Publish(p.code, msg)
}

func (p *roomPublisher) BroadcastExcept(connID string, msg protocol.Message) {
	p.ws.BroadcastExcept(connID, msg)
	p.sse.Publish(p.code, msg)
}

// Send is private to one connection and never reaches spectators.
func (p *roomPublisher) Send(connID string, msg protocol.Message) {
	p.ws.Send(connID, msg)
}
