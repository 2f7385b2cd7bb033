package session

import (
	"strings"

	"quizbuzzer/internal/buzz"
	"quizbuzzer/internal/events"
	"quizbuzzer/internal/players"
	"quizbuzzer/internal/protocol"

	"github.com/rs/zerolog/log"
)

type Verdict string

const (
	Correct = Verdict("correct")
	Wrong   = Verdict("wrong")
)

// ParseVerdict accepts the verdict spellings clients send.
func ParseVerdict(s string) (Verdict, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "correct", "right", "true":
		return Correct, true
	case "wrong", "false", "incorrect":
		return Wrong, true
	default:
		return "", false
	}
}

// Result adjudicates the active buzzer and clears the round. A verdict on
// anyone but the active buzzer is ignored. A verdict on the timeout
// sentinel only clears the round.
func (s *Session) Result(m Member, name, verdict string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) {
		return
	}
	v, ok := ParseVerdict(verdict)
	if !ok || !s.arbiter.CanAdjudicate(name) {
		log.Debug().Str("room", s.code).Str("player", name).Str("verdict", verdict).Msg("result ignored")
		return
	}

	var effects []players.Effect
	if name != buzz.NoPlayer {
		switch v {
		case Correct:
			effects = s.players.Adjust(name, s.settings.PointsRight)
		case Wrong:
			effects = s.players.Adjust(name, s.settings.PointsWrong)
			effects = append(effects, s.players.AdjustOthers(name, s.settings.PointsOthers)...)
		}
	}
	s.arbiter.Reset()

	log.Info().Str("room", s.code).Str("player", name).Str("verdict", string(v)).Int("total_delta", players.Sum(effects)).Msg("buzz adjudicated")
	s.toAll(protocol.Message{Type: protocol.ScoreUpdateEffects, Data: protocol.Effects(effects)})
	s.toAll(protocol.Message{Type: protocol.BuzzReset})
	s.toAll(sound(string(v)))
	s.emit(events.Event{Type: events.Verdict, Player: name, Delta: players.Sum(effects), Data: map[string]any{"verdict": string(v), "effects": protocol.Effects(effects)}})
	s.publishState()
}

// AdjustPoints is a host override adding delta to one player.
func (s *Session) AdjustPoints(m Member, name string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) || !s.players.Has(name) {
		return
	}
	s.publishEffects(s.players.Adjust(name, delta))
}

// SetPoints is a host override setting one player's score.
func (s *Session) SetPoints(m Member, name string, points int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) || !s.players.Has(name) {
		return
	}
	s.publishEffects(s.players.Set(name, points))
}

// ResetAllPoints zeroes the scoreboard.
func (s *Session) ResetAllPoints(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isHost(m) {
		return
	}
	s.publishEffects(s.players.ResetAll())
}

func (s *Session) publishEffects(effects []players.Effect) {
	s.toAll(protocol.Message{Type: protocol.ScoreUpdateEffects, Data: protocol.Effects(effects)})
	for _, e := range effects {
		s.emit(events.Event{Type: events.ScoreAdjusted, Player: e.Name, Delta: e.Delta})
	}
	s.publishState()
}
