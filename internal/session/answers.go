package session

import (
	"quizbuzzer/internal/answers"
	"quizbuzzer/internal/events"
	"quizbuzzer/internal/players"
	"quizbuzzer/internal/protocol"

	"github.com/rs/zerolog/log"
)

// TextUpdate overwrites the sender's free-text answer. The submission
// lock is not consulted here.
func (s *Session) TextUpdate(m Member, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isParticipant(m) {
		return
	}
	s.answers.SetText(m.Player, text)
	s.publishState()
}

func (s *Session) ClearTexts(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) {
		return
	}
	s.answers.ClearTexts()
	s.publishState()
}

func (s *Session) ClearSingleText(m Member, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) || !s.players.Has(name) {
		return
	}
	s.answers.ClearText(name)
	s.publishState()
}

// LockTexts freezes every player's answer, or with locked=false behaves
// as UnlockAllTexts.
func (s *Session) LockTexts(m Member, locked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) {
		return
	}
	if locked {
		s.answers.LockAll(s.players.Names())
	} else {
		s.answers.UnlockAll()
	}
	s.publishLogin("", locked)
}

// LoginStatus marks an answer as submitted (or withdrawn). Choices, when
// given, are stored together with the lock.
func (s *Session) LoginStatus(m Member, name string, loggedIn bool, choices []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	who, ok := s.target(m, name)
	if !ok {
		return
	}
	if loggedIn && choices != nil {
		s.answers.SetChoices(who, choices, s.settings.MCOptionCount, s.settings.MCMultiSelect)
	}
	s.answers.SetLocked(who, loggedIn)
	s.publishLogin(who, loggedIn)
}

// MCAnswer stores the sender's multiple-choice selection unless the
// answer is already locked in.
func (s *Session) MCAnswer(m Member, choices []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isParticipant(m) || s.answers.Locked(m.Player) {
		return
	}
	s.answers.SetChoices(m.Player, choices, s.settings.MCOptionCount, s.settings.MCMultiSelect)
	s.publishState()
}

// UnlockText reopens one player's answer and discards its MC selection.
func (s *Session) UnlockText(m Member, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) || !s.players.Has(name) {
		return
	}
	s.answers.Unlock(name)
	s.publishLogin(name, false)
}

func (s *Session) UnlockAllTexts(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) {
		return
	}
	s.answers.UnlockAll()
	s.publishLogin("", false)
}

// HostMCSolve scores every locked-in selection against solution, then
// unlocks everyone. A solution with no option in range is ignored.
func (s *Session) HostMCSolve(m Member, solution []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) {
		return
	}
	sol := answers.Normalize(solution, s.settings.MCOptionCount)
	if len(sol) == 0 {
		log.Debug().Str("room", s.code).Msg("multiple choice solve without a valid option ignored")
		return
	}

	correct := []string{}
	var effects []players.Effect
	for _, name := range s.answers.LockedNames() {
		if !s.players.Has(name) {
			continue
		}
		if answers.SameSet(s.answers.Choices(name), sol) {
			correct = append(correct, name)
			effects = append(effects, s.players.Adjust(name, s.settings.PointsRight)...)
		} else {
			effects = append(effects, s.players.Adjust(name, s.settings.MCWrongPoints)...)
		}
	}
	s.answers.UnlockAll()

	log.Info().Str("room", s.code).Ints("solution", sol).Strs("correct", correct).Msg("multiple choice solved")
	s.toAll(protocol.Message{Type: protocol.ScoreUpdateEffects, Data: protocol.Effects(effects)})
	s.toAll(protocol.Message{Type: protocol.MCSolved, Data: protocol.MCSolvedData{Solution: sol, CorrectPlayers: correct}})
	s.toAll(sound("solved"))
	s.emit(events.Event{Type: events.MCSolved, Delta: players.Sum(effects), Data: protocol.MCSolvedData{Solution: sol, CorrectPlayers: correct}})
	s.publishLogin("", false)
}

func (s *Session) publishLogin(name string, loggedIn bool) {
	s.toAll(protocol.Message{Type: protocol.LoginStatusUpdate, Data: protocol.LoginStatusData{
		Name:     name,
		LoggedIn: loggedIn,
		Status:   s.answers.Locks(),
	}})
	s.publishState()
}
