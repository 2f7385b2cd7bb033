package session

import (
	"quizbuzzer/internal/protocol"
)

// Snapshot returns the current projection. The host view adds answer
// contents and settings.
func (s *Session) Snapshot(host bool) protocol.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project(host)
}

func (s *Session) project(host bool) protocol.Snapshot {
	order := s.arbiter.Order()
	if order == nil {
		order = []string{}
	}
	snap := protocol.Snapshot{
		Room:        s.code,
		Players:     s.players.Scores(),
		PlayerOrder: s.players.Names(),
		ShowPoints:  s.settings.ShowPoints,
		BuzzMode:    string(s.arbiter.Mode()),
		BuzzOrder:   order,
		BuzzState:   string(s.arbiter.Availability()),
		MCSettings: protocol.MCSettings{
			OptionCount: s.settings.MCOptionCount,
			MultiSelect: s.settings.MCMultiSelect,
		},
		LoginStatus: s.answers.Locks(),
		Surrender:   s.surrender.Flags(),
		Connected:   s.connectedNames(),
		Timer:       s.timer.Status(),
	}
	if host {
		snap.Texts = s.answers.Texts()
		snap.MCAnswers = s.answers.AllChoices()
		snap.Settings = s.settings
	}
	return snap
}

// publishState pushes playerUpdate: the host view to the host, the
// participant view to everyone else.
func (s *Session) publishState() {
	if s.closed {
		return
	}
	s.toHost(protocol.Message{Type: protocol.PlayerUpdate, Data: s.project(true)})
	s.toParticipants(protocol.Message{Type: protocol.PlayerUpdate, Data: s.project(false)})
}
