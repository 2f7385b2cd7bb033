package session

import (
	"quizbuzzer/internal/protocol"

	"github.com/rs/zerolog/log"
)

// SurrenderToggle flips a player's pass flag. Participants toggle
// themselves; the host may toggle any known player.
func (s *Session) SurrenderToggle(m Member, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	who, ok := s.target(m, name)
	if !ok {
		return
	}
	s.surrender.Toggle(who)
	s.refreshGate()
	s.publishState()
}

func (s *Session) SurrenderClear(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) {
		return
	}
	s.surrender.Clear()
	s.refreshGate()
	s.publishState()
}

func (s *Session) SurrenderClearSingle(m Member, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) {
		return
	}
	s.surrender.ClearOne(name)
	s.refreshGate()
	s.publishState()
}

// refreshGate blocks buzzing while every connected player has surrendered.
// Disconnected names keep their score but do not hold the gate open.
// It only flips the gate; the round lock is left as it was.
func (s *Session) refreshGate() {
	all := s.surrender.All(s.connectedNames())
	if !s.arbiter.SetBlocked(all) {
		return
	}
	log.Info().Str("room", s.code).Bool("blocked", all).Msg("surrender gate changed")
	if all && !s.closed {
		s.toAll(protocol.Message{Type: protocol.BuzzBlocked, Data: protocol.BuzzBlockedData{Reason: "surrender"}})
	}
}
