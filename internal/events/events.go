package events

import (
	"time"

	"github.com/rs/zerolog/log"
)

type Type string

const (
	BuzzAccepted  = Type("buzz_accepted")
	Verdict       = Type("verdict")
	ScoreAdjusted = Type("score_adjusted")
	MCSolved      = Type("mc_solved")
	TimerExpired  = Type("timer_expired")
	RoomReset     = Type("room_reset")
)

// Event is a room-level fact worth archiving. Player and Delta are set for
// single-player events; Data carries anything else.
type Event struct {
	Room   string    `json:"room"`
	Type   Type      `json:"type"`
	Player string    `json:"player,omitempty"`
	Delta  int       `json:"delta,omitempty"`
	Data   any       `json:"data,omitempty"`
	At     time.Time `json:"at"`
}

type Bus struct {
	Events chan Event
}

func NewBus(size int) *Bus {
	if size <= 0 {
		size = 10
	}
	return &Bus{
		Events: make(chan Event, size),
	}
}

// Publish never blocks: when nobody drains the bus fast enough the event
// is dropped. A nil bus discards everything.
func (b *Bus) Publish(ev Event) bool {
	if b == nil {
		return false
	}
	select {
	case b.Events <- ev:
		return true
	default:
		log.Warn().Str("room", ev.Room).Str("event", string(ev.Type)).Msg("event bus full, dropping event")
		return false
	}
}
