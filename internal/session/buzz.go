package session

import (
	"quizbuzzer/internal/buzz"
	"quizbuzzer/internal/countdown"
	"quizbuzzer/internal/events"
	"quizbuzzer/internal/protocol"

	"github.com/rs/zerolog/log"
)

// Buzz runs one participant's buzz through the arbiter. Rejected buzzes
// change nothing and publish nothing.
func (s *Session) Buzz(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isParticipant(m) {
		return
	}

	out := s.arbiter.Accept(m.Player)
	if !out.Accepted {
		log.Debug().Str("room", s.code).Str("player", m.Player).Str("reason", string(out.Reason)).Msg("buzz rejected")
		return
	}
	log.Info().Str("room", s.code).Str("player", m.Player).Strs("order", out.Order).Msg("buzz accepted")

	s.announceBuzz(m.Player, out.Order, false)
	if s.timer.State() == countdown.StateRunning && s.timerOpts.stopOnBuzz {
		s.timer.Reset()
		s.broadcastTimer()
	}
	s.emit(events.Event{Type: events.BuzzAccepted, Player: m.Player, Data: out.Order})
	s.publishState()
}

func (s *Session) announceBuzz(name string, order []string, timeout bool) {
	named := protocol.Message{Type: protocol.BuzzEvent, Data: protocol.BuzzData{Name: name, Timeout: timeout}}
	visible := named
	if !s.settings.ShowBuzzedPlayerToAll {
		visible = protocol.Message{Type: protocol.BuzzEvent, Data: protocol.BuzzData{Timeout: timeout}}
	}

	s.toHost(named)
	s.toParticipants(visible)
	if s.arbiter.RoundLocked() {
		s.toAll(protocol.Message{Type: protocol.BuzzBlocked, Data: protocol.BuzzBlockedData{Reason: string(buzz.Locked)}})
	} else {
		s.toHost(protocol.Message{Type: protocol.BuzzOrder, Data: protocol.BuzzOrderData{Order: order}})
	}
	s.toAll(sound("buzz"))
}

// announceQueue tells the room that a departed buzzer left the queue.
// An emptied queue reads as a reset round.
func (s *Session) announceQueue() {
	order := s.arbiter.Order()
	if len(order) == 0 {
		s.toAll(protocol.Message{Type: protocol.BuzzReset})
		return
	}
	s.toHost(protocol.Message{Type: protocol.BuzzOrder, Data: protocol.BuzzOrderData{Order: order}})
}

// ChangeBuzzMode switches FIRST/MULTI and hard-resets the round.
func (s *Session) ChangeBuzzMode(m Member, mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) {
		return
	}
	s.settings.BuzzMode = buzz.ParseMode(mode)
	s.arbiter.SetMode(s.settings.BuzzMode)
	s.toAll(protocol.Message{Type: protocol.BuzzModeSet, Data: protocol.BuzzModeData{Mode: string(s.settings.BuzzMode)}})
	s.publishState()
}

// ResetBuzz clears the round without touching the surrender gate.
func (s *Session) ResetBuzz(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) {
		return
	}
	s.arbiter.Reset()
	s.toAll(protocol.Message{Type: protocol.BuzzReset})
	s.publishState()
}
